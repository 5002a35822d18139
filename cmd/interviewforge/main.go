package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/interviewforge/interviewforge/internal/profile"
	"github.com/interviewforge/interviewforge/plugin/ai"
	"github.com/interviewforge/interviewforge/plugin/ai/agent"
	"github.com/interviewforge/interviewforge/server"
	"github.com/interviewforge/interviewforge/server/interview"
	apiv1 "github.com/interviewforge/interviewforge/server/router/api/v1"
	"github.com/interviewforge/interviewforge/server/service/pipeline"
	"github.com/interviewforge/interviewforge/store"
	"github.com/interviewforge/interviewforge/store/db"
)

const greetingBanner = `
InterviewForge - mock interviews with structured feedback
`

var rootCmd = &cobra.Command{
	Use:   "interviewforge",
	Short: "Run the interviewforge server",
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := loadProfile()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		st, llm, err := bootstrap(ctx, instanceProfile)
		if err != nil {
			slog.Error("failed to bootstrap", slog.String("error", err.Error()))
			return
		}

		machine := interview.NewMachine(st, agent.NewEvaluator(llm))
		apiService := apiv1.NewAPIV1Service(instanceProfile, st, machine,
			agent.NewResumeAnalyzer(llm),
			agent.NewRoundGenerator(llm),
			agent.NewArtifactDrafter(llm))

		s, err := server.NewServer(ctx, instanceProfile, st, apiService)
		if err != nil {
			slog.Error("failed to create server", slog.String("error", err.Error()))
			return
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			slog.Info("received signal, shutting down", slog.String("signal", sig.String()))
			s.Shutdown(ctx)
			cancel()
		}()

		fmt.Println(greetingBanner)
		if err := s.Start(ctx); err != nil {
			slog.Error("failed to start server", slog.String("error", err.Error()))
			cancel()
		}
		<-ctx.Done()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one mock interview end to end and write the study artifacts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		instanceProfile := loadProfile()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		st, llm, err := bootstrap(ctx, instanceProfile)
		if err != nil {
			return err
		}
		defer st.Close()

		resumeFile, _ := cmd.Flags().GetString("resume-file")
		role, _ := cmd.Flags().GetString("role")
		interactive, _ := cmd.Flags().GetBool("interactive")

		resumeText := demoResume
		if resumeFile != "" {
			data, err := os.ReadFile(resumeFile)
			if err != nil {
				return err
			}
			resumeText = string(data)
		}

		var source pipeline.AnswerSource = pipeline.DemoAnswerSource{}
		if interactive {
			source = &terminalAnswerSource{reader: bufio.NewReader(os.Stdin)}
		}

		machine := interview.NewMachine(st, agent.NewEvaluator(llm))
		p := pipeline.New(machine,
			agent.NewResumeAnalyzer(llm),
			agent.NewRoundGenerator(llm),
			agent.NewArtifactDrafter(llm),
			instanceProfile.Data)

		result, err := p.Run(ctx, resumeText, role, source)
		if err != nil {
			return err
		}

		fmt.Printf("\nInterview %s complete. %d answers recorded.\n", result.Session.UID, len(result.Session.Answers))
		fmt.Printf("Artifacts written to %s:\n", result.OutputDir)
		for _, name := range result.Files {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

// terminalAnswerSource poses each question on the terminal and reads the
// answer from stdin. An empty line submits.
type terminalAnswerSource struct {
	reader *bufio.Reader
}

func (s *terminalAnswerSource) Answer(ctx context.Context, question interview.Question) (string, error) {
	fmt.Printf("\n[%s] %s\n> ", question.RoundType, question.Text)
	var lines []string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

const demoResume = `Jane Doe
Data engineer with 3 years of experience. Python, SQL, Go.
Built ETL pipelines at scale and reduced query latency by 30%.
Looking to grow system design skills.`

func loadProfile() *profile.Profile {
	instanceProfile := &profile.Profile{
		Mode:   viper.GetString("mode"),
		Addr:   viper.GetString("addr"),
		Port:   viper.GetInt("port"),
		Data:   viper.GetString("data"),
		Driver: viper.GetString("driver"),
		DSN:    viper.GetString("dsn"),
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		slog.Error("invalid profile", slog.String("error", err.Error()))
		os.Exit(1)
	}
	return instanceProfile
}

// bootstrap opens the database, runs migrations and selects the generation
// service. Without an API key the deterministic offline stub is used, which
// keeps demo mode fully functional.
func bootstrap(ctx context.Context, instanceProfile *profile.Profile) (*store.Store, ai.GenerationService, error) {
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(dbDriver, instanceProfile)
	if err := st.Migrate(ctx); err != nil {
		return nil, nil, err
	}

	var llm ai.GenerationService
	if instanceProfile.IsAIEnabled() {
		llm, err = ai.NewGenerationService(&ai.Config{
			BaseURL:           instanceProfile.AIBaseURL,
			APIKey:            instanceProfile.AIAPIKey,
			Model:             instanceProfile.AIModel,
			Temperature:       float32(instanceProfile.AITemperature),
			MaxRetries:        3,
			RequestsPerMinute: 60,
		})
		if err != nil {
			return nil, nil, err
		}
		slog.Info("generation service enabled", slog.String("model", instanceProfile.AIModel))
	} else {
		llm = ai.NewMockGenerationService()
		slog.Info("generation service disabled, using offline stub")
	}
	return st, llm, nil
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("iforge")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	runCmd.Flags().String("resume-file", "", "path to a resume text file (a built-in sample is used when omitted)")
	runCmd.Flags().String("role", "Data Engineer", "target role for the interview")
	runCmd.Flags().Bool("interactive", false, "answer questions interactively on the terminal")
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
