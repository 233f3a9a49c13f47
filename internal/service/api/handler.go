package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/darkkaiser/applestore-notifier/internal/config"
	"github.com/darkkaiser/applestore-notifier/internal/pkg/version"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
	"github.com/labstack/echo/v4"
)

// HealthResponse 헬스체크 엔드포인트의 응답 형식입니다.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  int64  `json:"uptime"`
	Version string `json:"version"`
}

// VersionResponse 버전 정보 엔드포인트의 응답 형식입니다.
type VersionResponse struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
	DirtyBuild bool   `json:"dirty_build"`
}

// Handler API 엔드포인트 핸들러입니다.
//
// 헬스체크, 버전 정보 조회와 설정 파일에 등록된 작업의 원격 실행 요청을 처리합니다.
type Handler struct {
	appConfig *config.AppConfig

	taskSubmitter contract.TaskSubmitter

	buildInfo version.Info

	serverStartTime time.Time
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(appConfig *config.AppConfig, taskSubmitter contract.TaskSubmitter, buildInfo version.Info) *Handler {
	if appConfig == nil {
		panic("AppConfig 객체가 초기화되지 않았습니다")
	}
	if taskSubmitter == nil {
		panic("TaskSubmitter 객체가 초기화되지 않았습니다")
	}

	return &Handler{
		appConfig: appConfig,

		taskSubmitter: taskSubmitter,

		buildInfo: buildInfo,

		serverStartTime: time.Now(),
	}
}

// HealthCheckHandler 서버의 동작 상태를 반환합니다.
// 인증 없이 호출 가능하며, 모니터링 시스템에서 사용됩니다.
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  healthStatusOK,
		Uptime:  int64(time.Since(h.serverStartTime).Seconds()),
		Version: h.buildInfo.Version,
	})
}

// VersionHandler 서버의 빌드 정보를 반환합니다.
func (h *Handler) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, VersionResponse{
		Version:    h.buildInfo.Version,
		Commit:     h.buildInfo.Commit,
		BuildDate:  h.buildInfo.BuildDate,
		GoVersion:  h.buildInfo.GoVersion,
		DirtyBuild: h.buildInfo.DirtyBuild,
	})
}

// RunCommandHandler 설정 파일에 등록된 작업 명령어의 실행을 요청합니다.
//
// 요청된 작업/명령어가 설정 파일에 존재하는지 검증한 후 작업 실행 큐에 등록하며,
// 실행 결과는 기본 Notifier를 통해 비동기적으로 통지됩니다.
func (h *Handler) RunCommandHandler(c echo.Context) error {
	taskID := c.Param("task_id")
	commandID := c.Param("command_id")

	command := h.findCommand(taskID, commandID)
	if command == nil {
		return newHTTPError(http.StatusNotFound, fmt.Sprintf("등록되지 않은 작업 명령어(%s > %s)입니다. 설정 파일을 확인해 주세요.", taskID, commandID))
	}

	req := &contract.TaskSubmitRequest{
		TaskID:        contract.TaskID(taskID),
		CommandID:     contract.TaskCommandID(commandID),
		NotifyOnStart: true,
		RunBy:         contract.TaskRunByUser,
	}
	if err := req.Validate(); err != nil {
		return newHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.taskSubmitter.Submit(c.Request().Context(), req); err != nil {
		applog.WithComponentAndFields(componentHandler, applog.Fields{
			"task_id":    taskID,
			"command_id": commandID,
			"error":      err,
		}).Error("작업 실행 요청 등록이 실패하였습니다")

		return newHTTPError(http.StatusInternalServerError, "작업 실행 요청이 실패하였습니다. 잠시 후 다시 시도해 주세요.")
	}

	applog.WithComponentAndFields(componentHandler, applog.Fields{
		"task_id":    taskID,
		"command_id": commandID,
		"remote_ip":  c.RealIP(),
	}).Info("작업 실행 요청이 접수되었습니다")

	return c.JSON(http.StatusAccepted, SuccessResponse{
		ResultCode: 0,
		Message:    fmt.Sprintf("작업 실행 요청(%s > %s)이 접수되었습니다.", taskID, commandID),
	})
}

// findCommand 설정 파일에서 작업 명령어를 찾아 반환합니다. 없으면 nil을 반환합니다.
func (h *Handler) findCommand(taskID, commandID string) *config.CommandConfig {
	for i := range h.appConfig.Tasks {
		task := &h.appConfig.Tasks[i]
		if task.ID != taskID {
			continue
		}
		for j := range task.Commands {
			if task.Commands[j].ID == commandID {
				return &task.Commands[j]
			}
		}
	}
	return nil
}
