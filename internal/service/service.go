package service

import (
	"context"
	"sync"
)

// Service 애플리케이션을 구성하는 장기 실행 서비스의 공통 인터페이스입니다.
//
// 각 서비스는 Start() 호출 시 자신의 고루틴을 띄우고 즉시 반환하며,
// serviceStopCtx가 취소되면 정리 작업을 수행한 뒤 serviceStopWG.Done()을 호출해야 합니다.
type Service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}
