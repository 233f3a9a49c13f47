package config

import (
	"fmt"
	"slices"
	"time"

	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
	"github.com/darkkaiser/applestore-notifier/pkg/cronx"
	"github.com/go-playground/validator/v10"
)

// AppConfig 애플리케이션의 모든 설정을 포함하는 최상위 구조체
type AppConfig struct {
	Debug     bool            `json:"debug"`
	HTTPRetry HTTPRetryConfig `json:"http_retry"`
	Notifiers NotifierConfig  `json:"notifiers"`
	Tasks     []TaskConfig    `json:"tasks" validate:"unique=ID"`
	API       APIConfig       `json:"api"`
}

// validate 설정 파일 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate(v *validator.Validate) error {
	if err := c.HTTPRetry.validate(); err != nil {
		return err
	}

	notifierIDs, err := c.Notifiers.validate(v)
	if err != nil {
		return err
	}

	if err := c.validateTasks(v, notifierIDs); err != nil {
		return err
	}

	if err := c.API.validate(v); err != nil {
		return err
	}

	return nil
}

func (c *AppConfig) validateTasks(v *validator.Validate, notifierIDs []string) error {
	// Tasks 중복 ID 검사
	if err := checkUniqueField(v, c.Tasks, "ID", "Task"); err != nil {
		return err
	}

	for _, t := range c.Tasks {
		// Task 구조체 유효성 검사
		if err := checkStruct(v, t, fmt.Sprintf("Task['%s']", t.ID)); err != nil {
			return err
		}

		for _, cmd := range t.Commands {
			// Command 구조체 유효성 검사
			if err := checkStruct(v, cmd, fmt.Sprintf("Task['%s'] > Command['%s']", t.ID, cmd.ID)); err != nil {
				return err
			}

			// Notifier 존재 여부 확인
			if !slices.Contains(notifierIDs, cmd.DefaultNotifierID) {
				return apperrors.New(apperrors.NotFound, fmt.Sprintf("Task['%s'] > Command['%s']에서 참조하는 NotifierID('%s')가 정의되지 않았습니다", t.ID, cmd.ID, cmd.DefaultNotifierID))
			}

			// Cron 표현식 검증 (Scheduler가 활성화된 경우)
			if cmd.Scheduler.Runnable {
				if err := cronx.Validate(cmd.Scheduler.TimeSpec); err != nil {
					return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("Task['%s'] > Command['%s']의 스케줄러(TimeSpec) 설정이 유효하지 않습니다", t.ID, cmd.ID))
				}
			}
		}
	}

	return nil
}

// VerifyRecommendations 서비스 운영의 안정성과 보안을 위해 권장되는 설정 준수 여부를 진단합니다.
// 강제적인 에러를 발생시키지는 않으나, 잠재적 위험 요소(예: Well-known Port 사용)에 대한 경고 메시지를 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	return c.API.VerifyRecommendations()
}

// HTTPRetryConfig HTTP 요청 실패 시 재시도 횟수와 대기 시간을 정의하는 설정 구조체
type HTTPRetryConfig struct {
	MaxRetries int           `json:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay"`
}

func (c *HTTPRetryConfig) validate() error {
	if c.MaxRetries < 0 {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("HTTP 최대 재시도 횟수(max_retries)는 0 이상이어야 합니다: '%d'", c.MaxRetries))
	}
	if c.RetryDelay <= 0 {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("HTTP 재시도 대기 시간(retry_delay)은 0보다 커야 합니다: '%v'", c.RetryDelay))
	}
	return nil
}

// NotifierConfig 텔레그램 등 다양한 알림 채널을 정의하는 설정 구조체
type NotifierConfig struct {
	DefaultNotifierID string           `json:"default_notifier_id"`
	Telegrams         []TelegramConfig `json:"telegrams" validate:"unique=ID"`
}

func (c *NotifierConfig) validate(v *validator.Validate) ([]string, error) {
	// Notifier 중복 ID 검사
	if err := checkUniqueField(v, c.Telegrams, "ID", "Notifier"); err != nil {
		return nil, err
	}

	// Telegrams 개별 유효성 검사
	for _, telegram := range c.Telegrams {
		if err := checkStruct(v, telegram, fmt.Sprintf("Telegram Notifier['%s']", telegram.ID)); err != nil {
			return nil, err
		}
	}

	var notifierIDs []string
	for _, telegram := range c.Telegrams {
		notifierIDs = append(notifierIDs, telegram.ID)
	}

	// 기본 Notifier ID 검사
	if !slices.Contains(notifierIDs, c.DefaultNotifierID) {
		return nil, apperrors.New(apperrors.NotFound, fmt.Sprintf("기본 NotifierID('%s')가 정의된 Notifier 목록에 존재하지 않습니다", c.DefaultNotifierID))
	}

	return notifierIDs, nil
}

// TelegramConfig 텔레그램 봇 토큰 및 채팅 ID 정보를 담는 설정 구조체
type TelegramConfig struct {
	ID       string `json:"id" validate:"required"`
	BotToken string `json:"bot_token" validate:"required,telegram_bot_token"`
	ChatID   int64  `json:"chat_id" validate:"required"`
}

// TaskConfig 주기적으로 실행하거나 특정 조건에 따라 수행할 작업을 정의하는 구조체
type TaskConfig struct {
	ID       string                 `json:"id" validate:"required"`
	Title    string                 `json:"title"`
	Commands []CommandConfig        `json:"commands" validate:"min=1,unique=ID"`
	Data     map[string]interface{} `json:"data"`
}

// CommandConfig 작업(Task) 내에서 실제로 실행되는 개별 명령을 정의하는 구조체
type CommandConfig struct {
	ID                string                 `json:"id" validate:"required"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Scheduler         SchedulerConfig        `json:"scheduler"`
	DefaultNotifierID string                 `json:"default_notifier_id"`
	Data              map[string]interface{} `json:"data"`
}

// SchedulerConfig 명령의 주기적 실행 여부와 실행 주기를 정의하는 구조체
type SchedulerConfig struct {
	Runnable bool   `json:"runnable"`
	TimeSpec string `json:"time_spec"`
}

// APIConfig 작업 실행을 원격으로 요청할 수 있는 REST API 서버 설정 구조체
type APIConfig struct {
	Enabled    bool `json:"enabled"`
	ListenPort int  `json:"listen_port" validate:"min=1,max=65535"`
}

func (c *APIConfig) validate(v *validator.Validate) error {
	if !c.Enabled {
		return nil
	}

	if err := v.Struct(c); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationErrors {
				if fieldErr.StructField() == "ListenPort" {
					return apperrors.New(apperrors.InvalidInput, "API 서버 포트(listen_port)는 1에서 65535 사이의 값이어야 합니다")
				}
			}
		}
		return apperrors.Wrap(err, apperrors.InvalidInput, "API 서버 설정 검증 중 알 수 없는 오류가 발생했습니다")
	}

	return nil
}

func (c *APIConfig) VerifyRecommendations() []string {
	var warnings []string

	// 시스템 예약 포트(1024 미만) 사용 경고
	if c.Enabled && c.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.ListenPort))
	}

	return warnings
}
