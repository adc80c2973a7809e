package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leonardotrapani/burnsub/internal/bus"
	"github.com/leonardotrapani/burnsub/internal/config"
	"github.com/leonardotrapani/burnsub/internal/notify"
	"github.com/leonardotrapani/burnsub/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

// OutputDirName is the subdirectory of the watched directory that receives
// subtitled videos. fsnotify does not recurse, so outputs never re-trigger.
const OutputDirName = "subtitled"

const outputSuffix = "_subtitled"

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
}

// Job runs the pipeline for one video.
type Job interface {
	Run(ctx context.Context, videoPath string) (pipeline.Report, error)
	Status() pipeline.Status
}

// JobFactory builds a job from the configuration current at dispatch time.
type JobFactory func(cfg *config.Config, output string) (Job, error)

// DefaultJobFactory wires a pipeline.Driver from cfg.
func DefaultJobFactory(cfg *config.Config, output string) (Job, error) {
	return pipeline.NewFromConfig(cfg, pipeline.Options{Output: output})
}

type Options struct {
	Dir          string
	Settle       time.Duration // quiet period after the last write before a file is queued
	ScanExisting bool
}

type Daemon struct {
	mu       sync.RWMutex
	opts     Options
	manager  *config.Manager
	factory  JobFactory
	bus      bus.Bus
	notifier *notify.Sender

	ctx    context.Context
	cancel context.CancelFunc

	queue   chan string
	timers  map[string]*time.Timer
	queued  map[string]bool
	current Job
	done    int
	failed  int
}

func New(manager *config.Manager, b bus.Bus, factory JobFactory, opts Options) *Daemon {
	if factory == nil {
		factory = DefaultJobFactory
	}
	if opts.Settle <= 0 {
		opts.Settle = 2 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		opts:     opts,
		manager:  manager,
		factory:  factory,
		bus:      b,
		notifier: manager.GetConfig().Notifier(),
		ctx:      ctx,
		cancel:   cancel,
		queue:    make(chan string, 64),
		timers:   make(map[string]*time.Timer),
		queued:   make(map[string]bool),
	}
}

func (d *Daemon) status() pipeline.Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.current == nil {
		return pipeline.Idle
	}
	return d.current.Status()
}

// Stop asks a running daemon to shut down.
func (d *Daemon) Stop() {
	d.cancel()
}

func (d *Daemon) Run() error {
	info, err := os.Stat(d.opts.Dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", d.opts.Dir)
	}

	lock, err := d.bus.Lock()
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Printf("Daemon: failed to release lock: %v", err)
		}
	}()

	ln, err := d.bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(d.opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", d.opts.Dir, err)
	}

	d.manager.OnReload(func(cfg *config.Config) {
		d.mu.Lock()
		d.notifier = cfg.Notifier()
		sender := d.notifier
		d.mu.Unlock()
		sender.Send(notify.MsgConfigReloaded, "")
	})
	if err := d.manager.StartWatching(d.ctx); err != nil {
		log.Printf("Daemon: config hot reload disabled: %v", err)
	} else {
		defer d.manager.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal %v, shutting down gracefully", sig)
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	var g errgroup.Group
	g.Go(func() error {
		d.watchLoop(watcher)
		return nil
	})
	g.Go(func() error {
		d.worker()
		return nil
	})

	if d.opts.ScanExisting {
		g.Go(func() error {
			d.scan()
			return nil
		})
	}

	log.Printf("Daemon started, watching %s", d.opts.Dir)

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("Shutdown requested")
				_ = g.Wait()
				d.stopTimers()
				return nil
			}
			log.Printf("Accept error: %v", err)
			d.cancel()
			_ = g.Wait()
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("Client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	if len(line) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}
	cmd := line[0]

	switch cmd {
	case 's':
		d.mu.RLock()
		queued, done, failed := len(d.queued), d.done, d.failed
		d.mu.RUnlock()
		fmt.Fprintf(c, "STATUS status=%s queued=%d done=%d failed=%d\n", d.status(), queued, done, failed)
	case 'v':
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case 'q':
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		log.Printf("Unknown command: %c", cmd)
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

func (d *Daemon) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !IsCandidate(event.Name) {
				continue
			}
			d.settle(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Daemon: watcher error: %v", err)

		case <-d.ctx.Done():
			return
		}
	}
}

// settle queues path once no write has been seen for the settle period.
func (d *Daemon) settle(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[path]; ok {
		t.Reset(d.opts.Settle)
		return
	}
	d.timers[path] = time.AfterFunc(d.opts.Settle, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		d.enqueue(path)
	})
}

func (d *Daemon) stopTimers() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}

func (d *Daemon) enqueue(path string) {
	d.mu.Lock()
	if d.queued[path] {
		d.mu.Unlock()
		return
	}
	d.queued[path] = true
	d.mu.Unlock()

	select {
	case d.queue <- path:
		log.Printf("Daemon: queued %s", filepath.Base(path))
	case <-d.ctx.Done():
	}
}

func (d *Daemon) scan() {
	entries, err := os.ReadDir(d.opts.Dir)
	if err != nil {
		log.Printf("Daemon: scan %s: %v", d.opts.Dir, err)
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(d.opts.Dir, e.Name())
		if !IsCandidate(path) {
			continue
		}
		if _, err := os.Stat(OutputPath(path)); err == nil {
			continue
		}
		d.enqueue(path)
	}
}

func (d *Daemon) worker() {
	for {
		select {
		case path := <-d.queue:
			d.process(path)
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Daemon) process(path string) {
	defer func() {
		d.mu.Lock()
		delete(d.queued, path)
		d.current = nil
		d.mu.Unlock()
	}()

	if _, err := os.Stat(path); err != nil {
		log.Printf("Daemon: %s vanished before processing", filepath.Base(path))
		return
	}

	cfg := d.manager.GetConfig()
	output := OutputPath(path)
	job, err := d.factory(cfg, output)
	if err != nil {
		log.Printf("Daemon: cannot start job for %s: %v", filepath.Base(path), err)
		d.mu.Lock()
		d.failed++
		sender := d.notifier
		d.mu.Unlock()
		sender.Send(notify.MsgJobFailed, err.Error())
		return
	}

	d.mu.Lock()
	d.current = job
	d.mu.Unlock()

	report, err := job.Run(d.ctx, path)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			d.failed++
		}
		return
	}
	d.done++
	log.Printf("Daemon: %s finished (%s) in %v", filepath.Base(path), report.Outcome, report.Elapsed.Round(time.Millisecond))
}

// IsCandidate reports whether path looks like a source video to subtitle.
func IsCandidate(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	if !videoExtensions[ext] {
		return false
	}
	return !strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), outputSuffix)
}

// OutputPath returns where the subtitled copy of video is written.
func OutputPath(video string) string {
	dir, base := filepath.Split(video)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, OutputDirName, name+outputSuffix+".mp4")
}
