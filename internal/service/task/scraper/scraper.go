package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
	"github.com/darkkaiser/applestore-notifier/internal/service/task/fetcher"
	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
	"golang.org/x/net/html/charset"
)

// component Task 서비스의 Scraper 로깅용 컴포넌트 이름
const component = "task.scraper"

// Scraper 웹 페이지 및 JSON API로부터 데이터를 수집하는 통합 인터페이스입니다.
//
// 실제 HTTP 전송은 주입받은 Fetcher에 위임하며, 이 계층은 응답의 형식 검증과
// 파싱 가능한 형태로의 변환만을 담당합니다.
type Scraper interface {
	// FetchJSONBytes 지정된 URL로 GET 요청을 보내 JSON 응답 본문을 원시 바이트로 반환합니다.
	//
	// 응답 구조가 수시로 변하는 외부 API를 다룰 때는 구조체 디코딩 대신
	// 원시 바이트를 반환하여 호출자가 관대한(tolerant) 파싱을 수행할 수 있도록 합니다.
	// HTML 에러 페이지가 반환된 경우(잘못된 엔드포인트, 인증 실패 등)는 에러로 처리됩니다.
	FetchJSONBytes(ctx context.Context, rawURL string, header http.Header) ([]byte, error)

	// FetchHTMLDocument 지정된 URL로 GET 요청을 보내 HTML 문서를 가져오고, 파싱된 goquery.Document를 반환합니다.
	// 응답 헤더의 Content-Type을 분석하여 비 UTF-8 인코딩 페이지도 자동으로 UTF-8로 변환하여 처리합니다.
	FetchHTMLDocument(ctx context.Context, rawURL string, header http.Header) (*goquery.Document, error)

	// FetchHTMLSelection 지정된 URL의 HTML 문서에서 CSS 선택자(selector)에 해당하는 요소를 찾습니다.
	// 선택된 요소가 없으면 에러를 반환하여, 변경된 웹 페이지 구조를 조기에 감지할 수 있도록 돕습니다.
	FetchHTMLSelection(ctx context.Context, rawURL string, selector string) (*goquery.Selection, error)
}

// scraper Scraper 인터페이스의 구현체입니다.
type scraper struct {
	fetcher fetcher.Fetcher
}

var _ Scraper = (*scraper)(nil)

// New 주입받은 Fetcher를 사용하는 새로운 Scraper 인스턴스를 생성합니다.
func New(f fetcher.Fetcher) Scraper {
	return &scraper{fetcher: f}
}

func (s *scraper) FetchJSONBytes(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, fmt.Sprintf("JSON 요청 생성에 실패했습니다 (URL: %s)", rawURL))
	}

	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if req.Header.Get("Accept") == "" {
		// 서버에 JSON 응답을 선호함을 알립니다.
		req.Header.Set("Accept", "application/json")
	}

	resp, err := s.fetcher.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("JSON API(%s) 요청 전송 중 에러가 발생했습니다", rawURL))
	}
	defer resp.Body.Close()

	if err := s.verifyJSONContentType(resp, rawURL); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExecutionFailed, fmt.Sprintf("JSON API(%s) 응답 본문을 읽는 중 에러가 발생했습니다", rawURL))
	}

	return body, nil
}

// verifyJSONContentType JSON API 응답의 Content-Type 헤더를 검증합니다.
//
// 검증 전략:
//   - HTML 응답: 즉시 에러 반환 (잘못된 엔드포인트, 인증 실패 등의 조기 감지)
//   - 비표준 Content-Type: 경고 로그만 남기고 계속 진행 (실제 많은 API가 잘못된 헤더를 사용하므로 관대하게 처리)
//   - 204 No Content: 본문이 없는 정상 응답이므로 검증 생략
func (s *scraper) verifyJSONContentType(resp *http.Response, rawURL string) error {
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))

	if strings.Contains(contentType, "text/html") {
		return apperrors.New(apperrors.ExecutionFailed, fmt.Sprintf("JSON 응답 대신 HTML 페이지가 반환되었습니다. API 엔드포인트를 확인하세요 (URL: %s)", rawURL))
	}

	if contentType != "" && !strings.Contains(contentType, "json") {
		applog.WithComponent(component).WithFields(applog.Fields{
			"url":          rawURL,
			"content_type": contentType,
		}).Warn("JSON API 응답의 Content-Type이 표준(application/json)과 다릅니다")
	}

	return nil
}

func (s *scraper) FetchHTMLDocument(ctx context.Context, rawURL string, header http.Header) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, fmt.Sprintf("HTML 요청 생성에 실패했습니다 (URL: %s)", rawURL))
	}

	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := s.fetcher.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("HTML 페이지(%s) 요청 중 네트워크 또는 클라이언트 에러가 발생했습니다", rawURL))
	}
	defer resp.Body.Close()

	// Content-Type 헤더를 기반으로 인코딩을 UTF-8로 변환
	utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExecutionFailed, fmt.Sprintf("페이지(%s)의 인코딩 변환이 실패하였습니다", rawURL))
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExecutionFailed, fmt.Sprintf("불러온 페이지(%s)의 데이터 파싱이 실패하였습니다", rawURL))
	}

	return doc, nil
}

func (s *scraper) FetchHTMLSelection(ctx context.Context, rawURL string, selector string) (*goquery.Selection, error) {
	doc, err := s.FetchHTMLDocument(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}

	sel := doc.Find(selector)
	if sel.Length() <= 0 {
		return nil, NewErrHTMLStructureChanged(rawURL, selector)
	}

	return sel, nil
}
