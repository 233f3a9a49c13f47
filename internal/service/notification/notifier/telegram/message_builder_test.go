package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/darkkaiser/applestore-notifier/internal/service/notification/notifier"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{
			name:     "0초",
			duration: 0,
			expected: " (0초 지남)",
		},
		{
			name:     "초 단위만",
			duration: 30 * time.Second,
			expected: " (30초 지남)",
		},
		{
			name:     "분 단위만 (0초 생략)",
			duration: 5 * time.Minute,
			expected: " (5분 지남)",
		},
		{
			name:     "시 단위만 (0분 0초 생략)",
			duration: 2 * time.Hour,
			expected: " (2시간 지남)",
		},
		{
			name:     "분 + 초",
			duration: 5*time.Minute + 30*time.Second,
			expected: " (5분 30초 지남)",
		},
		{
			name:     "시 + 분 (0초 생략)",
			duration: 2*time.Hour + 30*time.Minute,
			expected: " (2시간 30분 지남)",
		},
		{
			name:     "시 + 분 + 초 (전체)",
			duration: 1*time.Hour + 30*time.Minute + 10*time.Second,
			expected: " (1시간 30분 10초 지남)",
		},
		{
			name:     "복잡한 시간 (3661초)",
			duration: 3661 * time.Second,
			expected: " (1시간 1분 1초 지남)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatElapsed(tt.duration)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// newBuilderTestNotifier 메시지 빌더 테스트용 Notifier 인스턴스를 생성하는 헬퍼 함수
func newBuilderTestNotifier() *telegramNotifier {
	return &telegramNotifier{
		Base:              notifier.NewBase("test-id", true, 100, 10*time.Second),
		botCommandsByTask: make(map[contract.TaskID]map[contract.TaskCommandID]botCommand),
	}
}

func TestTelegramNotifierWithTitle(t *testing.T) {
	n := newBuilderTestNotifier()

	// 봇 명령어 맵 설정 (ID 조회 테스트용)
	taskID := contract.TaskID("applestore")
	cmdID := contract.TaskCommandID("iphone17pro")
	n.botCommandsByTask[taskID] = map[contract.TaskCommandID]botCommand{
		cmdID: {title: "애플스토어 > iPhone 17 Pro"},
	}

	tests := []struct {
		name         string
		notification contract.Notification
		message      string
		expected     string
	}{
		{
			name: "직접 제공된 제목 사용",
			notification: contract.Notification{
				Title: "My Title",
			},
			message:  "Hello",
			expected: "<b>【 My Title 】</b>\n\nHello",
		},
		{
			name: "HTML 특수문자 이스케이프",
			notification: contract.Notification{
				Title: "<script>alert('xss')</script>",
			},
			message:  "Content",
			expected: "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;",
		},
		{
			name: "긴 제목 잘라내기",
			notification: contract.Notification{
				Title: strings.Repeat("A", 300),
			},
			message:  "Content",
			expected: strings.Repeat("A", maxTitleLength),
		},
		{
			name: "제목 없음 - 봇 명령어 제목으로 대체",
			notification: contract.Notification{
				Title:     "",
				TaskID:    taskID,
				CommandID: cmdID,
			},
			message:  "Content",
			expected: "<b>【 애플스토어 &gt; iPhone 17 Pro 】</b>",
		},
		{
			name: "제목 없음 + 조회 실패 - 원본 유지",
			notification: contract.Notification{
				Title:     "",
				TaskID:    "unknown-task",
				CommandID: "unknown-cmd",
			},
			message:  "Original Message",
			expected: "Original Message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := n.withTitle(&tt.notification, tt.message)
			assert.Contains(t, result, tt.expected)

			if tt.name == "긴 제목 잘라내기" {
				assert.NotContains(t, result, strings.Repeat("A", maxTitleLength+1))
			}
		})
	}
}

func TestTelegramNotifierWithElapsed(t *testing.T) {
	n := newBuilderTestNotifier()

	tests := []struct {
		name         string
		notification contract.Notification
		message      string
		expected     string
	}{
		{
			name: "양수 경과 시간",
			notification: contract.Notification{
				Elapsed: 10 * time.Second,
			},
			message:  "Job Finished",
			expected: "Job Finished (10초 지남)",
		},
		{
			name: "경과 시간 0 - 변경 없음",
			notification: contract.Notification{
				Elapsed: 0,
			},
			message:  "Job Started",
			expected: "Job Started",
		},
		{
			name: "음수 경과 시간 - 변경 없음",
			notification: contract.Notification{
				Elapsed: -5 * time.Minute,
			},
			message:  "Weird Job",
			expected: "Weird Job",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := n.withElapsed(&tt.notification, tt.message)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestTelegramNotifierBuildEnrichedMessage(t *testing.T) {
	n := newBuilderTestNotifier()

	t.Run("모든 메타데이터 포함", func(t *testing.T) {
		notification := &contract.Notification{
			Title:         "Full Report",
			Message:       "Main Content",
			Elapsed:       1 * time.Hour,
			ErrorOccurred: true,
		}

		result := n.buildEnrichedMessage(notification)

		assert.Contains(t, result, "<b>【 Full Report 】</b>")
		assert.Contains(t, result, "Main Content")
		assert.Contains(t, result, "(1시간 지남)")
		assert.Contains(t, result, "*** 오류가 발생하였습니다. ***")

		// 순서 확인: 제목 → 본문 → 경과 시간 → 오류 표시
		titleIdx := strings.Index(result, "Full Report")
		msgIdx := strings.Index(result, "Main Content")
		elapsedIdx := strings.Index(result, "지남")
		errorIdx := strings.Index(result, "오류가 발생하였습니다")

		assert.True(t, titleIdx < msgIdx, "제목은 본문보다 먼저 나타나야 합니다")
		assert.True(t, msgIdx < elapsedIdx, "본문은 경과 시간보다 먼저 나타나야 합니다")
		assert.True(t, elapsedIdx < errorIdx, "경과 시간은 오류 표시보다 먼저 나타나야 합니다")
	})

	t.Run("메타데이터 없음 - 원본 그대로", func(t *testing.T) {
		notification := &contract.Notification{
			Message: "Simple Message",
		}

		result := n.buildEnrichedMessage(notification)
		assert.Equal(t, "Simple Message", result)
	})

	t.Run("오류 표시만 포함", func(t *testing.T) {
		notification := &contract.Notification{
			Message:       "Something failed",
			ErrorOccurred: true,
		}

		result := n.buildEnrichedMessage(notification)
		assert.Equal(t, "Something failed\n\n*** 오류가 발생하였습니다. ***", result)
	})
}
