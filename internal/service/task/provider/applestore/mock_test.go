package applestore

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/applestore-notifier/internal/config"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/darkkaiser/applestore-notifier/internal/service/task/fetcher"
	"github.com/darkkaiser/applestore-notifier/internal/service/task/provider"
)

// stubFetcher 실제 네트워크 요청 없이 준비된 응답을 반환하는 테스트용 Fetcher입니다.
type stubFetcher struct {
	mu sync.Mutex

	// contentType 응답의 Content-Type 헤더입니다. (기본값: application/json)
	contentType string

	// body 응답 본문입니다.
	body []byte

	// err 설정된 경우 응답 대신 반환되는 에러입니다.
	err error

	// requestedURLs Do가 수신한 요청 URL 목록입니다.
	requestedURLs []string
}

var _ fetcher.Fetcher = (*stubFetcher)(nil)

func (f *stubFetcher) Close() error { return nil }

func (f *stubFetcher) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.requestedURLs = append(f.requestedURLs, req.URL.String())
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	contentType := f.contentType
	if contentType == "" {
		contentType = "application/json"
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(bytes.NewReader(f.body)),
		Request:    req,
	}, nil
}

// RequestedURLs 지금까지 수신한 요청 URL 목록의 사본을 반환합니다.
func (f *stubFetcher) RequestedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	urls := make([]string, len(f.requestedURLs))
	copy(urls, f.requestedURLs)
	return urls
}

// newTestAppConfig 지정된 Command data 블록을 포함하는 테스트용 AppConfig를 생성합니다.
func newTestAppConfig(commandID string, commandData map[string]interface{}) *config.AppConfig {
	return &config.AppConfig{
		Tasks: []config.TaskConfig{
			{
				ID:    string(TaskID),
				Title: "Apple Store 알리미",
				Commands: []config.CommandConfig{
					{
						ID:    commandID,
						Title: "테스트 Command",
						Data:  commandData,
					},
				},
			},
		},
	}
}

// newTestTask newTask를 통해 테스트용 Task 인스턴스를 생성합니다.
func newTestTask(t *testing.T, commandID string, commandData map[string]interface{}, f fetcher.Fetcher, runBy contract.TaskRunBy) *task {
	t.Helper()

	created, err := newTask(provider.NewTaskParams{
		AppConfig: newTestAppConfig(commandID, commandData),
		Request: &contract.TaskSubmitRequest{
			TaskID:     TaskID,
			CommandID:  contract.TaskCommandID(commandID),
			NotifierID: "telegram-admin",
			RunBy:      runBy,
		},
		InstanceID: "instance-1",
		Fetcher:    f,
	})
	require.NoError(t, err)

	appleStoreTask, ok := created.(*task)
	require.True(t, ok)

	return appleStoreTask
}
