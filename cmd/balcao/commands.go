package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/balcaohq/balcao/internal/agent"
	"github.com/balcaohq/balcao/internal/config"
	"github.com/balcaohq/balcao/internal/llm"
	"github.com/balcaohq/balcao/internal/messaging"
	"github.com/balcaohq/balcao/internal/output"
	"github.com/balcaohq/balcao/internal/period"
	"github.com/balcaohq/balcao/internal/router"
	"github.com/balcaohq/balcao/internal/server"
	"github.com/balcaohq/balcao/internal/state"
	"github.com/balcaohq/balcao/internal/store"
	"github.com/balcaohq/balcao/internal/tools"
	"github.com/balcaohq/balcao/internal/tui"
	"github.com/balcaohq/balcao/internal/validate"
)

func loadConfigFromCtx(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dir := cmd.String("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

func newLogger(cmd *cli.Command) *slog.Logger {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	if cmd.Bool("quiet") {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newPrinter(cmd *cli.Command) *output.Printer {
	mode := output.ModePlain
	if cmd.Bool("json") {
		mode = output.ModeJSON
	}
	if cmd.Bool("quiet") {
		mode = output.ModeQuiet
	}
	return output.NewPrinter(mode)
}

// pipeline holds the wired conversational stack.
type pipeline struct {
	cfg    *config.Config
	db     *state.DB
	store  store.Store
	orch   *agent.Orchestrator
	router *router.Router
	logger *slog.Logger
}

func buildPipeline(cmd *cli.Command) (*pipeline, error) {
	cfg, err := loadConfigFromCtx(cmd)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd)

	client, err := llm.NewFromConfig(llm.ProviderConfig{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, err
	}

	db, err := state.OpenDB(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	st := store.NewHTTPStore(cfg.Store.BaseURL, cfg.Store.APIKey, cfg.Store.Timeout)
	registry := tools.NewRegistry(st, cfg.Tools)
	orch := agent.New(client, registry, cfg.Agent, cfg.Tools.DefaultTimezone, logger)
	sender := messaging.NewHTTPSender(cfg.Messaging.BaseURL, cfg.Messaging.Token, cfg.Messaging.Timeout)

	return &pipeline{
		cfg:    cfg,
		db:     db,
		store:  st,
		orch:   orch,
		router: router.New(db, st, orch, sender, logger),
		logger: logger,
	}, nil
}

func cmdServe(ctx context.Context, cmd *cli.Command) error {
	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.db.Close()

	srv := server.New(p.router, p.cfg.Server.RequestTimeout, p.logger)
	return srv.Run(p.cfg.Server.Addr)
}

func cmdChat(ctx context.Context, cmd *cli.Command) error {
	merchantID := cmd.String("merchant")
	if err := validate.Identifier("merchant", merchantID); err != nil {
		return err
	}

	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.db.Close()

	session := cmd.String("session")
	var transcript []map[string]string

	run := func(ctx context.Context, message string) (string, bool) {
		result := p.orch.Run(ctx, agent.TurnRequest{
			MerchantID: merchantID,
			Message:    message,
		})
		if session != "" {
			transcript = append(transcript,
				map[string]string{"role": "merchant", "text": message},
				map[string]string{"role": "assistant", "text": result.Reply})
			if data, err := json.Marshal(transcript); err == nil {
				if err := p.db.SetKV("session:"+session, string(data)); err != nil {
					p.logger.Warn("snapshot session", "error", err)
				}
			}
		}
		return result.Reply, result.Fallback
	}

	program := tea.NewProgram(tui.NewModel(run), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func cmdResolve(ctx context.Context, cmd *cli.Command) error {
	phrase := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(phrase) == "" {
		return fmt.Errorf("usage: balcao resolve <phrase>")
	}

	cfg, err := loadConfigFromCtx(cmd)
	if err != nil {
		return err
	}
	timezone := cmd.String("timezone")
	if timezone == "" {
		timezone = cfg.Tools.DefaultTimezone
	}

	var reference time.Time
	if ref := cmd.String("reference"); ref != "" {
		reference, err = time.Parse(period.DateLayout, ref)
		if err != nil {
			return fmt.Errorf("invalid --reference (want YYYY-MM-DD): %w", err)
		}
	}

	rng, err := period.Resolve(period.Query{
		Phrase:    phrase,
		Timezone:  timezone,
		Reference: reference,
	})
	if err != nil {
		return err
	}

	printer := newPrinter(cmd)
	if cmd.Bool("json") {
		data, _ := json.Marshal(map[string]string{
			"kind":  string(rng.Kind),
			"start": rng.StartDate(),
			"end":   rng.EndDate(),
		})
		printer.JSON(string(data))
		return nil
	}

	printer.KeyValue([][]string{
		{"Phrase", phrase},
		{"Kind", string(rng.Kind)},
		{"Start", rng.StartDate()},
		{"End", rng.EndDate()},
	})
	return nil
}

func cmdPending(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfigFromCtx(cmd)
	if err != nil {
		return err
	}
	db, err := state.OpenDB(cfg.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	printer := newPrinter(cmd)

	if cmd.Bool("expire") {
		n, err := db.ExpirePendingReplies(time.Now().Add(-router.DefaultPendingTTL))
		if err != nil {
			return err
		}
		printer.Info("expired %d stale prompts", n)
	}

	prompts, err := db.ListPendingReplies(state.PendingOpen, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, _ := json.Marshal(prompts)
		printer.JSON(string(data))
		return nil
	}
	if len(prompts) == 0 {
		printer.Info("no open prompts")
		return nil
	}

	rows := make([][]string, 0, len(prompts))
	for _, p := range prompts {
		rows = append(rows, []string{
			output.StatusIcon(p.Status),
			p.ID,
			p.Sender,
			p.Kind,
			p.CreatedAt,
		})
	}
	printer.Table([]string{"", "ID", "Sender", "Kind", "Created"}, rows)
	return nil
}

func cmdPendingAdd(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) != 2 {
		return fmt.Errorf("usage: balcao pending add <merchant-uuid> <sender>")
	}
	merchantID, sender := args[0], args[1]
	if err := validate.Identifier("merchant", merchantID); err != nil {
		return err
	}

	cfg, err := loadConfigFromCtx(cmd)
	if err != nil {
		return err
	}
	db, err := state.OpenDB(cfg.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	id := uuid.NewString()
	if err := db.CreatePendingReply(id, merchantID, sender, "sale_amount", cmd.String("context")); err != nil {
		return err
	}

	newPrinter(cmd).Success("opened prompt %s for %s", id, sender)
	return nil
}

func cmdInit(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfigFromCtx(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	configPath := cmd.String("config")
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	printer := newPrinter(cmd)
	printer.Success("wrote %s and created %s", configPath, cfg.DataDir)
	return nil
}

func cmdConfig(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfigFromCtx(cmd)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
