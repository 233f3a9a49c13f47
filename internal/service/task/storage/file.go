package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/darkkaiser/applestore-notifier/pkg/concurrency"
	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
)

// component Task 서비스의 Storage 로깅용 컴포넌트 이름
const component = "task.storage"

// defaultDataDirectory 스냅샷을 저장할 기본 디렉토리 이름입니다.
const defaultDataDirectory = "data"

// tempFilePattern 원자적 쓰기 과정에서 생성되는 임시 파일의 이름 패턴입니다.
const tempFilePattern = "snapshot-*.tmp"

// fileTaskResultStore 파일 시스템을 기반으로 작업 스냅샷을 저장하는 저장소 구현체입니다.
//
// 파일 구조:
//   - snapshot-{taskID}-{commandID}-{hash}.json: 스냅샷이 JSON 형식으로 저장됩니다.
//   - snapshot-*.tmp: 저장 중 생성되는 임시 파일입니다.
type fileTaskResultStore struct {
	baseDir string

	// locks 동일한 파일에 대한 동시 읽기/쓰기를 방지하기 위한 파일별 뮤텍스입니다.
	locks *concurrency.KeyedMutex
}

var _ contract.TaskResultStore = (*fileTaskResultStore)(nil)

// NewFileTaskResultStore 파일 시스템 기반의 스냅샷 저장소를 생성합니다.
//
// 초기화 과정에서 저장 디렉토리를 생성하고, 이전 실행의 비정상 종료로 남은
// 오래된 임시 파일을 백그라운드에서 정리합니다.
// dir에 빈 문자열을 전달하면 기본 디렉토리("data")를 사용합니다.
func NewFileTaskResultStore(dir string) (contract.TaskResultStore, error) {
	if dir == "" {
		dir = defaultDataDirectory
	}

	// 이후 모든 파일 작업의 기준이 되도록 절대 경로로 변환합니다.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, NewErrStoreInitFailed(err, dir)
	}

	// 초기화 시점에 디렉토리 생성 및 접근 권한을 미리 확인하여 Save 시점의 에러를 조기에 발견합니다.
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, NewErrStoreInitFailed(err, absDir)
	}

	s := &fileTaskResultStore{
		baseDir: absDir,
		locks:   concurrency.NewKeyedMutex(),
	}

	// 서버 시작 속도에 영향을 주지 않도록 임시 파일 정리는 비동기로 수행합니다.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				applog.WithComponentAndFields(component, applog.Fields{
					"base_dir": s.baseDir,
					"panic":    r,
				}).Error("임시 파일 정리 중단: 백그라운드 작업 패닉 발생")
			}
		}()

		s.cleanupStaleTempFiles()
	}()

	return s, nil
}

// cleanupStaleTempFiles 이전 실행에서 남겨진 오래된 임시 파일을 정리합니다.
// 최근 1시간 이내에 수정된 파일은 다른 프로세스가 사용 중일 수 있으므로 보호합니다.
func (s *fileTaskResultStore) cleanupStaleTempFiles() {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"dir":   s.baseDir,
			"error": err,
		}).Warn("임시 파일 정리 중단: 디렉토리 조회 실패")

		return
	}

	threshold := time.Now().Add(-1 * time.Hour)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matched, _ := filepath.Match(tempFilePattern, entry.Name())
		if !matched {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(threshold) {
			continue
		}

		fullPath := filepath.Join(s.baseDir, entry.Name())
		if err := os.Remove(fullPath); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"file":  fullPath,
				"error": err,
			}).Warn("임시 파일 삭제 실패: 파일 제거 오류")
		} else {
			applog.WithComponentAndFields(component, applog.Fields{
				"file": fullPath,
			}).Info("임시 파일 삭제 완료: 이전 실행 잔존 파일 정리")
		}
	}
}

// Load 저장된 스냅샷을 파일에서 읽어옵니다.
//
// 쓰기 중인 파일을 읽는 것을 방지하기 위해 읽기에도 파일별 Lock을 적용하며,
// Lock 보유 시간을 최소화하기 위해 JSON 역직렬화는 Lock 해제 후 수행합니다.
// 저장된 스냅샷이 없으면 contract.ErrTaskResultNotFound를 반환합니다.
func (s *fileTaskResultStore) Load(taskID contract.TaskID, commandID contract.TaskCommandID, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return ErrLoadRequiresPointer
	}

	filename, err := s.resolveSafePath(taskID, commandID)
	if err != nil {
		return err
	}

	// Windows 등 대소문자를 구분하지 않는 파일 시스템을 위해 Lock 키는 소문자로 정규화합니다.
	var data []byte
	err = s.locks.WithLock(strings.ToLower(filename), func() error {
		var readErr error
		data, readErr = os.ReadFile(filename)
		if readErr != nil {
			if os.IsNotExist(readErr) {
				return contract.ErrTaskResultNotFound
			}
			return NewErrSnapshotReadFailed(readErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return NewErrSnapshotUnmarshalFailed(err)
	}

	return nil
}

// Save 스냅샷을 파일에 저장합니다.
//
// 저장 중 시스템 장애가 발생해도 데이터 무결성을 보장하기 위해
// "임시 파일 쓰기 → fsync → 원자적 rename" 전략을 사용하며,
// 같은 파일에 대한 동시 쓰기는 파일별 뮤텍스로 직렬화합니다.
func (s *fileTaskResultStore) Save(taskID contract.TaskID, commandID contract.TaskCommandID, v any) error {
	filename, err := s.resolveSafePath(taskID, commandID)
	if err != nil {
		return err
	}

	// JSON 직렬화는 Lock 획득 전에 수행하여 Lock 보유 시간을 최소화합니다.
	data, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return NewErrSnapshotMarshalFailed(err)
	}

	return s.locks.WithLock(strings.ToLower(filename), func() error {
		return s.writeAtomic(filename, data)
	})
}

// resolveSafePath TaskID, CommandID로부터 안전하게 검증된 파일 경로를 생성합니다.
//
// filepath.Rel 기반 검증으로 생성된 경로가 기본 디렉토리를 벗어나지 않는지 확인하여
// Path Traversal 공격을 방어합니다. 단순 접두사 비교의 Sibling Directory 취약점도 함께 해결됩니다.
func (s *fileTaskResultStore) resolveSafePath(taskID contract.TaskID, commandID contract.TaskCommandID) (string, error) {
	filename := snapshotFilename(taskID, commandID)

	cleanPath := filepath.Clean(filepath.Join(s.baseDir, filename))

	rel, err := filepath.Rel(s.baseDir, cleanPath)
	if err != nil {
		return "", NewErrPathResolutionFailed(err)
	}

	if strings.HasPrefix(rel, "..") {
		applog.WithComponentAndFields(component, applog.Fields{
			"task_id":    taskID,
			"command_id": commandID,
			"filename":   filename,
			"base_dir":   s.baseDir,
			"path":       cleanPath,
		}).Error("파일 경로 생성 차단: 경로 이탈 시도 감지")

		return "", ErrPathTraversalDetected
	}

	return cleanPath, nil
}

// writeAtomic 데이터를 파일에 원자적으로 저장합니다.
//
// 임시 파일은 rename이 원자적으로 동작하도록 반드시 최종 파일과 같은 디렉토리에 생성하며,
// 전원 차단 시 데이터 유실을 막기 위해 파일 내용과 디렉토리 엔트리를 각각 fsync합니다.
func (s *fileTaskResultStore) writeAtomic(filename string, data []byte) error {
	dir := filepath.Dir(filename)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return NewErrSnapshotWriteFailed(err, "저장 디렉토리 생성")
	}

	tmpFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return NewErrSnapshotWriteFailed(err, "임시 파일 생성")
	}
	tmpPath := tmpFile.Name()

	// Windows에서는 열려있는 파일을 삭제할 수 없으므로 Close가 Remove보다 먼저 실행되어야 합니다.
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	if _, err := tmpFile.Write(data); err != nil {
		return NewErrSnapshotWriteFailed(err, "파일 쓰기")
	}

	if err := tmpFile.Sync(); err != nil {
		return NewErrSnapshotWriteFailed(err, "디스크 동기화")
	}

	// Windows에서는 파일이 열려 있으면 rename이 실패하므로 반드시 닫아야 합니다.
	if err := tmpFile.Close(); err != nil {
		return NewErrSnapshotWriteFailed(err, "파일 닫기")
	}

	if err := s.renameWithRetry(tmpPath, filename); err != nil {
		return NewErrSnapshotWriteFailed(err, "파일 이름 변경")
	}

	// 파일명 변경 사항을 디스크에 확실히 기록하기 위해 부모 디렉토리를 fsync합니다.
	// 실패해도 치명적이지 않으므로 에러를 무시합니다.
	if dirFile, err := os.Open(dir); err == nil {
		_ = dirFile.Sync()
		dirFile.Close()
	}

	return nil
}

// renameWithRetry 파일 이름 변경을 재시도 로직과 함께 수행합니다.
//
// Windows 개발 환경에서는 바이러스 백신이나 검색 인덱서가 파일을 일시적으로 잠글 수 있으므로,
// 짧은 대기 후 재시도하여 일시적인 잠금 문제를 우회합니다. Linux에서는 해가 되지 않습니다.
func (s *fileTaskResultStore) renameWithRetry(oldPath, newPath string) error {
	const maxRetries = 5
	const retryDelay = 10 * time.Millisecond

	var lastErr error
	for range maxRetries {
		if err := os.Rename(oldPath, newPath); err == nil {
			return nil
		} else {
			lastErr = err
		}

		time.Sleep(retryDelay)
	}

	return lastErr
}
