package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahul/sutra/internal/agent"
	"github.com/rahul/sutra/internal/gateway"
	"github.com/rahul/sutra/internal/governance"
	"github.com/rahul/sutra/internal/llm"
	"github.com/rahul/sutra/internal/observability"
	"github.com/rahul/sutra/internal/store"
	"github.com/rahul/sutra/internal/tools"
	"github.com/rahul/sutra/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	task := flag.String("task", "", "run a single task and exit")
	flag.Parse()

	observability.PrintBanner()

	// Route all log output through the terminal mutex so it never collides
	// with step progress lines.
	log.SetOutput(observability.NewTermWriter())

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Warning: could not load %s (%v), using defaults", *configPath, err)
		cfg = config.DefaultConfig()
	}

	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}
	client, err := llm.NewClientFromConfig(pName, pCfg)
	if err != nil {
		log.Fatal(err)
	}

	history, err := store.NewHistoryStore(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer history.Close()

	registry, browser := buildRegistry(cfg, client, history)

	gov := governance.NewDefaultPolicyEngine()
	// Default safety rules: block destructive shell invocations.
	_ = gov.DenyArguments(`rm\s+-rf`)
	_ = gov.DenyArguments(`mkfs`)
	_ = gov.DenyArguments(`shutdown`)
	_ = gov.DenyArguments(`reboot`)

	prompts := agent.NewPromptManager("./prompts")
	logger := observability.NewLogger()

	orch := agent.NewOrchestrator(client, registry, prompts, logger)
	orch.Policy = gov
	orch.Artifacts = history

	if *task != "" {
		runOnce(orch, cfg, *task, browser)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := gateway.NewDispatcher(orch, history)
	var primary gateway.Messenger

	if tgCfg, ok := cfg.GetGateway("telegram"); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, dispatcher)
		if err != nil {
			log.Fatal(err)
		}
		primary = tg
		startGateway(tg, stop)
	}
	if dcCfg, ok := cfg.GetGateway("discord"); ok {
		dc, err := gateway.NewDiscordGateway(dcCfg.Token, dcCfg.Channel, dispatcher)
		if err != nil {
			log.Fatal(err)
		}
		if primary == nil {
			primary = dc
		}
		startGateway(dc, stop)
	}
	if primary == nil {
		log.Fatal("No gateway enabled in config; use -task for one-shot runs")
	}

	scheduler := agent.NewScheduler(history, orch, gateway.AsNotifier(primary))
	go scheduler.Start(ctx)

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintRunStatus()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
				logger.LogHeartbeat()
			}
		}
	}()

	<-ctx.Done()
	if browser != nil {
		browser.Close()
	}
	time.Sleep(500 * time.Millisecond)
	log.Println("Shutting down")
}

// buildRegistry assembles the tool registry, honoring the config's disabled
// list. Registration order matters: it is the tie-break order for tool-name
// resolution, and "browser" doubles as the default tool.
func buildRegistry(cfg *config.Config, client *llm.Client, history *store.HistoryStore) (*tools.Registry, *tools.BrowserTool) {
	registry := tools.NewRegistry()
	var browser *tools.BrowserTool

	register := func(name string, build func() tools.Tool) {
		if cfg.ToolDisabled(name) {
			log.Printf("Tool %s disabled by config", name)
			return
		}
		if t := build(); t != nil {
			registry.Register(t)
		}
	}

	register("browser", func() tools.Tool {
		browser = tools.NewBrowserTool()
		return browser
	})
	register("research", func() tools.Tool {
		t, err := tools.NewResearchTool()
		if err != nil {
			log.Printf("Warning: failed to initialize research tool: %v", err)
			return nil
		}
		return t
	})
	register("scraper", func() tools.Tool { return tools.NewScraperTool() })
	register("markdown_generator", func() tools.Tool { return tools.NewMarkdownTool(cfg.App.Workspace) })
	register("code_generator", func() tools.Tool { return tools.NewCodegenTool(cfg.App.Workspace, client) })
	register("filesystem", func() tools.Tool { return tools.NewFilesystemTool(cfg.App.Workspace) })
	register("shell", func() tools.Tool { return tools.NewShellTool() })
	register("python_execute", func() tools.Tool { return tools.NewPythonTool() })
	register("schedule_task", func() tools.Tool { return tools.NewCronTool(history) })
	register("terminate", func() tools.Tool { return tools.NewTerminateTool() })

	return registry, browser
}

func runOnce(orch *agent.Orchestrator, cfg *config.Config, task string, browser *tools.BrowserTool) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := agent.NewRunInput(task)
	input.OutputDir = cfg.App.OutputDir
	output := orch.ExecuteTask(ctx, input)

	if browser != nil {
		browser.Close()
	}
	if !output.Success {
		log.Fatalf("Task failed: %s", output.Error)
	}
	fmt.Println()
	fmt.Println(output.Result)
}

func startGateway(m gateway.Messenger, stop context.CancelFunc) {
	go func() {
		if err := m.Start(); err != nil {
			log.Printf("Gateway stopped with error: %v", err)
			stop()
		}
	}()
}
