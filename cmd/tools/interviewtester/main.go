package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/career-guide/backend/internal/config"
	"github.com/zhouzirui/career-guide/backend/internal/model/interview"
	"github.com/zhouzirui/career-guide/backend/internal/model/persona"
	speechmodel "github.com/zhouzirui/career-guide/backend/internal/model/speech"
	"github.com/zhouzirui/career-guide/backend/internal/service/ai"
	interviewsvc "github.com/zhouzirui/career-guide/backend/internal/service/interview"
	"github.com/zhouzirui/career-guide/backend/internal/service/speech"
)

const endCommand = ":end"

// consoleSynthesizer 把播报内容写到日志，-speak 关闭时视为平台不支持
type consoleSynthesizer struct {
	enabled bool
}

func (s consoleSynthesizer) Available() bool { return s.enabled }

func (s consoleSynthesizer) Speak(u speechmodel.Utterance) error {
	log.Printf("[tts] %s", u.Text)
	return nil
}

func (s consoleSynthesizer) Cancel() error { return nil }

// stdinRecognizer 表示终端输入总是可用，结果由主循环通过 Capture.Deliver 送回
type stdinRecognizer struct{}

func (stdinRecognizer) Available() bool { return true }
func (stdinRecognizer) Start() error    { return nil }
func (stdinRecognizer) Stop() error     { return nil }

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	if !cfg.AI.Enabled() {
		log.Fatal("Ark 模型未配置，请先设置 ARK_API_KEY 与 Model")
	}

	personaID := flag.String("persona", cfg.Interview.Profile.PersonaID, "面试官 persona ID")
	role := flag.String("role", cfg.Interview.Profile.Role, "目标岗位")
	timeout := flag.Duration("timeout", cfg.Interview.CallTimeout, "单次模型调用超时")
	speak := flag.Bool("speak", false, "把播报内容打印到日志")
	flag.Parse()

	ctx := context.Background()
	aiService, err := ai.NewService(ctx, persona.NewMemoryStore(persona.Seed()), cfg.AI, nil)
	if err != nil {
		log.Fatalf("初始化 AI 服务失败: %v", err)
	}
	interviewer, err := aiService.Interviewer(*personaID, *role)
	if err != nil {
		log.Fatalf("初始化面试官失败: %v", err)
	}

	capture := speech.NewCapture(stdinRecognizer{})
	views := make(chan interview.View, 64)

	profile := cfg.Interview.Profile
	session := interviewsvc.New(uuid.NewString(), interviewsvc.Dependencies{
		Interviewer: interviewer,
		Speaker:     speech.NewGate(consoleSynthesizer{enabled: *speak}, nil),
		Capture:     capture,
	}, interviewsvc.Options{
		OpeningPrompt: profile.OpeningPrompt,
		Fallbacks: interviewsvc.Fallbacks{
			Opening:  profile.Fallbacks.Opening,
			Feedback: profile.Fallbacks.Feedback,
			Summary:  profile.Fallbacks.Summary,
		},
		CallTimeout: *timeout,
		OnChange: func(v interview.View) {
			views <- v
		},
	})
	capture.OnEvent(session.OnCaptureEvent)
	defer session.Close()

	fmt.Printf("Mock interview for %s. Type %s to finish early.\n", *role, endCommand)
	start := time.Now()
	if err := session.Start(ctx); err != nil {
		log.Fatalf("启动面试失败: %v", err)
	}

	in := bufio.NewReader(os.Stdin)
	for view := range views {
		switch view.Phase {
		case interview.PhaseStarting:
			fmt.Println("Preparing the first question...")
		case interview.PhaseAwaitingAnswer:
			if view.Notice != "" {
				fmt.Printf("! %s\n", view.Notice)
			}
			fmt.Printf("\nQ%d: %s\n", view.QuestionNumber, view.CurrentQuestion)
			line, ok := readAnswer(in)
			if !ok || line == endCommand {
				endSession(session)
				continue
			}
			if err := session.ToggleListening(); err != nil {
				log.Printf("语音输入不可用，改为文本提交: %v", err)
				if err := session.SubmitAnswer(line); err != nil {
					log.Fatalf("提交回答失败: %v", err)
				}
				continue
			}
			capture.Deliver(speechmodel.CaptureEvent{Type: speechmodel.CaptureResult, Transcript: line})
		case interview.PhaseProcessing:
			fmt.Println("Evaluating your answer...")
		case interview.PhaseDisplayingFeedback:
			fmt.Printf("\nFeedback: %s\n", view.Feedback)
			fmt.Printf("Press Enter for the next question or type %s to finish: ", endCommand)
			line, ok := readLine(in)
			if !ok || line == endCommand {
				endSession(session)
				continue
			}
			if err := session.Advance(); err != nil {
				log.Printf("进入下一题失败: %v", err)
			}
		case interview.PhaseProcessingSummary:
			fmt.Println("Generating your summary...")
		case interview.PhaseCompleted:
			fmt.Printf("\nSummary after %d question(s):\n%s\n", len(view.History), view.Summary)
			log.Printf("面试结束，用时 %s", time.Since(start).Round(time.Second))
			return
		case interview.PhaseExited:
			fmt.Println("Interview ended before any answer was reviewed.")
			return
		}
	}
}

// readAnswer 读取一行非空回答，空行重新提示；输入结束时返回 false
func readAnswer(in *bufio.Reader) (string, bool) {
	for {
		fmt.Print("> ")
		line, ok := readLine(in)
		if !ok {
			return "", false
		}
		if line != "" {
			return line, true
		}
		fmt.Println("Please type an answer.")
	}
}

func readLine(in *bufio.Reader) (string, bool) {
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func endSession(session *interviewsvc.Session) {
	if err := session.End(); err != nil {
		log.Printf("结束面试失败: %v", err)
	}
}
