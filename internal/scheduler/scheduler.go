package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"internwatch/internal/services/watch"
)

type Scheduler struct {
	cron    *cron.Cron
	service *watch.Service
	spec    string
	wg      sync.WaitGroup
}

func New(interval time.Duration, service *watch.Service) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		spec:    fmt.Sprintf("@every %s", interval),
	}
}

func (s *Scheduler) Start() error {
	// The cycle runs synchronously inside the cron job so Stop can wait
	// for an in-flight cycle; overlap is handled by the service's guard.
	_, err := s.cron.AddFunc(s.spec, func() {
		s.service.Run(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("[scheduler] started, spec %s", s.spec)

	// First cycle immediately so a restart catches up without waiting
	// out the interval.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.service.Run(context.Background())
	}()
	return nil
}

// Stop halts the trigger and waits for any in-flight cycle to finish its
// commits.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.wg.Wait()
}
