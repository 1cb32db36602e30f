package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"campus_lostfound/internal/client"
	"campus_lostfound/internal/config"
	"campus_lostfound/internal/infrastructure/logger"
	"campus_lostfound/internal/infrastructure/validation"
	"campus_lostfound/internal/poller"
	"campus_lostfound/internal/session"
	"campus_lostfound/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (default: search configs/)")
	baseURL := flag.String("base-url", "", "backend base URL, overrides config and "+config.BaseURLEnv)
	downloads := flag.String("downloads", "", "directory for saved post images (default: system temp dir)")
	flag.Parse()

	// 1. 加载配置
	conf := config.GetConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config failed: %v", err)
		}
		conf = loaded
	}
	if *baseURL != "" {
		conf.BaseURL = *baseURL
	}

	// 2. 初始化日志，界面占用终端，只写文件
	if err := logger.Init(&conf.LogConfig, logger.ModeTUI); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zap.L().Sync()

	// 3. 后端客户端与会话
	api, err := client.New(client.Options{BaseURL: conf.BaseURL, Timeout: conf.RequestTimeout})
	if err != nil {
		log.Fatalf("init client failed: %v", err)
	}
	v, err := validation.New(conf.Locale)
	if err != nil {
		log.Fatalf("init validator failed: %v", err)
	}
	sessions, err := session.NewStore(api, session.Options{SettleDelay: conf.LoginSettleDelay, Validator: v})
	if err != nil {
		log.Fatalf("init session failed: %v", err)
	}
	zap.L().Info("client started", zap.String("baseURL", api.BaseURL()))

	// 4. 运行界面
	app := tui.New(context.Background(), tui.Options{
		API:         api,
		Sessions:    sessions,
		Validator:   v,
		Visibility:  poller.NewTracker(true),
		Client:      conf.ClientConfig,
		DownloadDir: *downloads,
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus())
	app.Attach(p.Send)
	if _, err := p.Run(); err != nil {
		zap.L().Error("terminal ui exited with error", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
