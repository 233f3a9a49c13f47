package telegram

import (
	"fmt"
	"net/http"

	"github.com/darkkaiser/applestore-notifier/internal/config"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/darkkaiser/applestore-notifier/internal/service/notification/notifier"
	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
	"github.com/darkkaiser/applestore-notifier/pkg/strutil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/iancoleman/strcase"
	"golang.org/x/time/rate"
)

// params 텔레그램 Notifier 인스턴스를 생성하기 위해 필요한 설정 값들을 담고 있는 구조체입니다.
type params struct {
	BotToken  string
	ChatID    int64
	AppConfig *config.AppConfig
}

// NewProcessor 설정 파일의 텔레그램 항목들로부터 Notifier를 생성하는 ConfigProcessor를 반환합니다.
func NewProcessor() notifier.ConfigProcessor {
	return buildProcessor(newNotifier)
}

// constructor 텔레그램 Notifier 생성 로직을 추상화한 함수 타입입니다.
type constructor func(id contract.NotifierID, executor contract.TaskExecutor, p params) (notifier.Notifier, error)

// buildProcessor 주입된 생성자 함수(create)를 기반으로 텔레그램 Notifier 프로세서를 생성하여 반환합니다.
func buildProcessor(create constructor) notifier.ConfigProcessor {
	return func(appConfig *config.AppConfig, executor contract.TaskExecutor) ([]notifier.Notifier, error) {
		var notifiers []notifier.Notifier

		for _, telegram := range appConfig.Notifiers.Telegrams {
			p := params{
				BotToken:  telegram.BotToken,
				ChatID:    telegram.ChatID,
				AppConfig: appConfig,
			}
			n, err := create(contract.NotifierID(telegram.ID), executor, p)
			if err != nil {
				return nil, err
			}
			notifiers = append(notifiers, n)
		}

		return notifiers, nil
	}
}

// newNotifier 텔레그램 봇 API 클라이언트를 초기화하여 Notifier 인스턴스를 생성합니다.
func newNotifier(id contract.NotifierID, executor contract.TaskExecutor, p params) (notifier.Notifier, error) {
	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_id": id,
		"bot_token":   strutil.MaskSensitiveData(p.BotToken),
		"chat_id":     p.ChatID,
	}).Debug("텔레그램 Notifier 초기화 및 봇 API 클라이언트 생성 시작")

	// Go의 기본 http.DefaultClient는 타임아웃이 설정되어 있지 않아, 네트워크 장애 발생 시
	// 요청이 무한히 대기하는(Hang) 리소스 누수가 발생할 수 있습니다.
	// 이를 방지하기 위해 명시적인 타임아웃을 설정한 클라이언트를 주입합니다.
	httpClient := &http.Client{
		Timeout: httpClientTimeout,
	}

	botAPI, err := tgbotapi.NewBotAPIWithClient(p.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, NewErrInvalidBotToken(err)
	}

	// 앱 설정에 따라 봇 API의 상세 로그 출력 여부를 결정합니다.
	botAPI.Debug = p.AppConfig.Debug

	return newNotifierWithClient(id, &tgClient{BotAPI: botAPI}, executor, p)
}

// newNotifierWithClient 외부에서 주입된 텔레그램 봇 API 클라이언트를 사용하여 Notifier 인스턴스를 생성합니다.
func newNotifierWithClient(id contract.NotifierID, c client, executor contract.TaskExecutor, p params) (notifier.Notifier, error) {
	n := &telegramNotifier{
		Base: notifier.NewBase(id, true, notifierBufferSize, enqueueTimeout),

		chatID: p.ChatID,

		client: c,

		executor: executor,

		// 재시도 정책: API 호출 실패 시 즉시 재시도하지 않고 일정 시간 대기합니다.
		retryDelay: retryDelay,

		// 속도 제한: 텔레그램 API 정책을 준수하기 위해 발송 속도를 제어합니다.
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateBurst),

		// 명령어 처리 동시성 제한
		commandSemaphore: make(chan struct{}, commandConcurrency),
	}

	// 봇 명령어 등록 및 검증

	registeredCommands := make(map[string]botCommand)

	for _, t := range p.AppConfig.Tasks {
		for _, cmd := range t.Commands {
			if t.ID == "" || cmd.ID == "" {
				return nil, NewErrInvalidCommandIDs(t.ID, cmd.ID)
			}

			// 명령어 이름 생성: TaskID와 CommandID를 조합하여 유니크한 명령어 이름을 만듭니다.
			// 예: TaskID="applestore", CommandID="iphone17pro" -> "applestore_iphone_17_pro"
			commandName := fmt.Sprintf("%s_%s", strcase.ToSnake(t.ID), strcase.ToSnake(cmd.ID))

			// 중복 명령어 충돌 검사: 서로 다른 Task가 우연히 같은 명령어 이름을 가지게 되는 경우를 방지합니다.
			if existing, exists := registeredCommands[commandName]; exists {
				return nil, NewErrDuplicateCommandName(commandName, string(existing.taskID), string(existing.commandID), t.ID, cmd.ID)
			}

			newCommand := botCommand{
				name:        commandName,
				title:       fmt.Sprintf("%s > %s", t.Title, cmd.Title),
				description: cmd.Description,

				taskID:    contract.TaskID(t.ID),
				commandID: contract.TaskCommandID(cmd.ID),
			}

			n.botCommands = append(n.botCommands, newCommand)
			registeredCommands[commandName] = newCommand
		}
	}

	// 기본 도움말 명령어 추가
	n.botCommands = append(n.botCommands,
		botCommand{
			name:        botCommandHelp,
			title:       "도움말",
			description: "도움말을 표시합니다.",
		},
	)

	// 빠른 검색을 위한 인덱싱
	n.botCommandsByName = make(map[string]botCommand, len(n.botCommands))
	n.botCommandsByTask = make(map[contract.TaskID]map[contract.TaskCommandID]botCommand)

	for _, command := range n.botCommands {
		n.botCommandsByName[command.name] = command

		if !command.taskID.IsEmpty() && !command.commandID.IsEmpty() {
			if _, exists := n.botCommandsByTask[command.taskID]; !exists {
				n.botCommandsByTask[command.taskID] = make(map[contract.TaskCommandID]botCommand)
			}
			n.botCommandsByTask[command.taskID][command.commandID] = command
		}
	}

	return n, nil
}
