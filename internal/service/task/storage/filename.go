package storage

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/iancoleman/strcase"
)

// filenameReplacer 파일명 생성 시 파일 시스템에서 문제를 일으킬 수 있는 특수문자를 안전한 문자로 치환합니다.
// 경로 이탈 문자(.., /, \)와 Windows 예약 문자(< > : " | ? *)가 대상입니다.
var filenameReplacer = strings.NewReplacer(
	"..", "--",
	"/", "-",
	"\\", "-",
	"|", "-",
	"<", "-",
	">", "-",
	":", "-",
	"\"", "-",
	"?", "-",
	"*", "-",
)

// snapshotFilename 작업 ID와 명령 ID를 조합하여 시스템에서 안전하게 사용할 수 있는 고유한 파일명을 생성합니다.
//
// 사람이 읽기 쉬운 Kebab-Case 이름과 원본 ID의 64비트 해시를 결합하는 하이브리드 방식을 사용합니다.
// 해시 덕분에 서로 다른 ID가 정제 과정에서 같은 이름이 되거나, 대소문자를 구분하지 않는
// 파일 시스템에서 충돌하는 문제를 방지할 수 있습니다.
//
// 생성 패턴: "snapshot-{정제된작업이름}-{정제된명령이름}-{16자리해시}.json"
func snapshotFilename(taskID contract.TaskID, commandID contract.TaskCommandID) string {
	taskName := truncateByBytes(sanitizeName(string(taskID)), 50)
	commandName := truncateByBytes(sanitizeName(string(commandID)), 50)

	// 단순 연결("ab"+"c" == "a"+"bc")로 인한 해시 충돌을 막기 위해 길이 접두사를 포함하여 해싱합니다.
	hasher := fnv.New64a()
	_, _ = fmt.Fprintf(hasher, "%d:%s|%d:%s", len(taskID), taskID, len(commandID), commandID)

	return fmt.Sprintf("snapshot-%s-%s-%016x.json", taskName, commandName, hasher.Sum64())
}

// sanitizeName 파일명으로 안전하게 사용할 수 있도록 문자열을 정제합니다.
func sanitizeName(s string) string {
	kebab := strcase.ToKebab(s)

	// Kebab 변환 후에도 남아있을 수 있는 제어 문자(0x00-0x1F, 0x7F)를 하이픈으로 치환합니다.
	kebab = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return '-'
		}
		return r
	}, kebab)

	return filenameReplacer.Replace(kebab)
}

// truncateByBytes 문자열을 UTF-8 바이트 길이 기준으로 안전하게 자릅니다.
// Rune 단위로 순회하므로 한글 등 멀티바이트 문자가 중간에 잘려 깨지지 않습니다.
func truncateByBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	var totalBytes int
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		if totalBytes+size > limit {
			return s[:totalBytes]
		}
		totalBytes += size
		i += size
	}

	return s[:totalBytes]
}
