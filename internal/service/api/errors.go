package api

import (
	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
)

var (
	// ErrTaskSubmitterNotInitialized TaskSubmitter가 초기화되지 않은 상태에서 서비스를 시작하려고 할 때 반환됩니다.
	ErrTaskSubmitterNotInitialized = apperrors.New(apperrors.Internal, "TaskSubmitter 객체가 초기화되지 않았습니다")

	// ErrNotificationSenderNotInitialized NotificationSender가 초기화되지 않은 상태에서 서비스를 시작하려고 할 때 반환됩니다.
	ErrNotificationSenderNotInitialized = apperrors.New(apperrors.Internal, "NotificationSender 객체가 초기화되지 않았습니다")
)
