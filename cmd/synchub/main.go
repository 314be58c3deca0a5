package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"

	hubconf "github.com/synchub/synchub/internal/hub/conf"
	"github.com/synchub/synchub/internal/hub/invite"
	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/registry"
	"github.com/synchub/synchub/internal/hub/repo"
	"github.com/synchub/synchub/internal/hub/scheduler"
	"github.com/synchub/synchub/internal/hub/sync"
	"github.com/synchub/synchub/internal/pkg/mailer"
	"github.com/synchub/synchub/internal/pkg/shorturl"
	"github.com/synchub/synchub/pkg/conf"
	"github.com/synchub/synchub/pkg/lock"
	"github.com/synchub/synchub/pkg/log"
	"github.com/synchub/synchub/pkg/metrics"
	"github.com/synchub/synchub/pkg/orm"
)

const (
	defaultRecordInterval = "@every 5m"
	defaultTaskInterval   = "@hourly"
)

var confDir string

func main() {
	root := &cobra.Command{
		Use:          "synchub",
		Short:        "batch submission hub syncing researcher records into the identity registry",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	root.PersistentFlags().StringVarP(&confDir, "conf", "c", "conf.d", "configuration directory")
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	var cfg hubconf.AppConfig
	if _, err := conf.LoadConfigFile(confDir, &cfg); err != nil {
		return err
	}
	log.MustInit(&cfg.Log)

	db, err := orm.NewDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	redisClient, err := lock.NewRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	repos := repo.NewRepos(db)
	locker := lock.NewLocker(redisClient, "synchub", 10*time.Minute)

	sender, err := mailer.NewSMTPSender(cfg.Mail)
	if err != nil {
		return fmt.Errorf("configuring mailer: %w", err)
	}
	shortener := shorturl.NewShortener(repos.ShortURL, cfg.App.BaseURL)
	issuer := invite.NewIssuer(repos, sender, shortener, cfg.App.Secret, cfg.App.BaseURL)

	registryCfg := cfg.Registry.Config()
	clients := func(org *model.Organisation, user *model.User) (registry.IClient, error) {
		return registry.NewClient(registryCfg, org, user, repos.Token, repos.APICall)
	}
	syncer := sync.NewSyncer(repos, clients, issuer.Reinvite)
	sched := scheduler.New(repos, syncer, issuer, locker, sender, cfg.App.BaseURL, cfg.Scheduler.MaxRows)

	metricsServer := metrics.NewServer(cfg.Metrics)
	if err := metricsServer.Start(); err != nil {
		return err
	}

	recordInterval := cfg.Scheduler.RecordInterval
	if recordInterval == "" {
		recordInterval = defaultRecordInterval
	}
	taskInterval := cfg.Scheduler.TaskInterval
	if taskInterval == "" {
		taskInterval = defaultTaskInterval
	}

	ctx := context.Background()
	schedule := cron.New()
	if err := schedule.AddFunc(recordInterval, func() { runRecordPasses(ctx, sched) }); err != nil {
		return fmt.Errorf("scheduling record passes: %w", err)
	}
	if err := schedule.AddFunc(taskInterval, func() {
		if err := sched.ProcessTasks(ctx); err != nil {
			log.Errorf("task expiry pass: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("scheduling task expiry pass: %w", err)
	}
	schedule.Start()
	log.Infow("synchub started",
		"record_interval", recordInterval, "task_interval", taskInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	schedule.Stop()
	if err := metricsServer.Stop(); err != nil {
		log.Errorf("stopping metrics server: %v", err)
	}
	log.Info("synchub stopped")
	return nil
}

func runRecordPasses(ctx context.Context, sched *scheduler.Scheduler) {
	passes := []struct {
		name string
		run  func(context.Context) error
	}{
		{"affiliation", sched.ProcessAffiliationRecords},
		{"funding", sched.ProcessFundingRecords},
		{"work", sched.ProcessWorkRecords},
		{"peer-review", sched.ProcessPeerReviewRecords},
	}
	for _, pass := range passes {
		if err := pass.run(ctx); err != nil {
			log.Errorf("%s record pass: %v", pass.name, err)
		}
	}
}
