package contract

import (
	"testing"

	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTaskCommandIDMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		id       TaskCommandID
		target   TaskCommandID
		expected bool
	}{
		{name: "정확히 일치하면 true", id: "WatchPickup_iPhone", target: "WatchPickup_iPhone", expected: true},
		{name: "와일드카드 접두어가 일치하면 true", id: "WatchPickup_*", target: "WatchPickup_iPhone13Pro", expected: true},
		{name: "와일드카드 접두어가 다르면 false", id: "WatchPickup_*", target: "WatchPrice_iPhone13Pro", expected: false},
		{name: "와일드카드 없이 다른 ID는 false", id: "WatchPickup_iPhone", target: "WatchPickup_iPad", expected: false},
		{name: "빈 대상은 false", id: "WatchPickup_*", target: "", expected: false},
		{name: "와일드카드 단독은 모든 대상과 일치", id: "*", target: "Anything", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.id.Match(tt.target))
		})
	}
}

func TestTaskSubmitRequestValidate(t *testing.T) {
	t.Parallel()

	newValidRequest := func() *TaskSubmitRequest {
		return &TaskSubmitRequest{
			TaskID:     "APPLESTORE",
			CommandID:  "WatchPickup_iPhone13Pro",
			NotifierID: "telegram-default",
			RunBy:      TaskRunByScheduler,
		}
	}

	t.Run("유효한 요청은 통과한다", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, newValidRequest().Validate())
	})

	t.Run("NotifierID는 비어있어도 된다 (기본 Notifier 사용)", func(t *testing.T) {
		t.Parallel()

		req := newValidRequest()
		req.NotifierID = ""

		assert.NoError(t, req.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*TaskSubmitRequest)
	}{
		{name: "TaskID 누락", mutate: func(r *TaskSubmitRequest) { r.TaskID = "" }},
		{name: "CommandID 누락", mutate: func(r *TaskSubmitRequest) { r.CommandID = "  " }},
		{name: "공백뿐인 NotifierID", mutate: func(r *TaskSubmitRequest) { r.NotifierID = "   " }},
		{name: "실행 주체 미지정", mutate: func(r *TaskSubmitRequest) { r.RunBy = TaskRunByUnknown }},
	}

	for _, tt := range tests {
		t.Run(tt.name+"은 InvalidInput 에러를 반환한다", func(t *testing.T) {
			t.Parallel()

			req := newValidRequest()
			tt.mutate(req)

			err := req.Validate()
			assert.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
		})
	}
}

func TestNewErrorNotification(t *testing.T) {
	t.Parallel()

	n := NewErrorNotification("시스템 오류")

	assert.Equal(t, "시스템 오류", n.Message)
	assert.True(t, n.ErrorOccurred)
	assert.True(t, n.NotifierID.IsEmpty(), "기본 Notifier로 전송되어야 한다")
}
