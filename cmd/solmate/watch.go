package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gomlx/solmate/config"
	"github.com/janpfeifer/gonb/common"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// settleTime is how long to wait for a burst of file events to end before regenerating: editors
// often write a file in several steps.
const settleTime = 300 * time.Millisecond

// watch regenerates the programs whose IDL files change, until ctx is done. If the configuration
// file changes, it is reloaded and everything is regenerated.
func watch(ctx context.Context, cfg *config.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer func() { _ = watcher.Close() }()

	configPath := ""
	if *flagConfig != "" {
		configPath = absPath(common.ReplaceTildeInDir(*flagConfig))
	}
	watched := make(map[string]bool)
	addDirs := func(cfg *config.Config) error {
		dirs := []string{cfg.IDLDir}
		for _, program := range cfg.Programs {
			dirs = append(dirs, filepath.Dir(program.IDL))
		}
		if configPath != "" {
			dirs = append(dirs, filepath.Dir(configPath))
		}
		for _, dir := range dirs {
			if dir == "" {
				continue
			}
			dir = absPath(dir)
			if watched[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				return errors.Wrapf(err, "failed to watch %q", dir)
			}
			watched[dir] = true
			klog.V(1).Infof("watching %s", dir)
		}
		return nil
	}
	if err := addDirs(cfg); err != nil {
		return err
	}

	changed := make(map[string]bool)
	timer := time.NewTimer(settleTime)
	timer.Stop()
	klog.Infof("watching for changes, interrupt to stop")
	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			klog.Warningf("file watcher: %v", err)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			path := absPath(event.Name)
			if path != configPath && filepath.Ext(path) != ".json" {
				continue
			}
			klog.V(2).Infof("%s: %s", event.Op, path)
			changed[path] = true
			timer.Reset(settleTime)

		case <-timer.C:
			if changed[configPath] {
				reloaded, err := config.Load(configPath)
				if err != nil {
					klog.Errorf("%+v", err)
					clear(changed)
					continue
				}
				cfg = reloaded
				if err := addDirs(cfg); err != nil {
					klog.Errorf("%+v", err)
				}
			}
			regenerate(cfg, changed, changed[configPath])
			clear(changed)
		}
	}
}

// regenerate the jobs of cfg whose IDL is in changed, or all of them if all is set. Failures are
// logged: the watch goes on.
func regenerate(cfg *config.Config, changed map[string]bool, all bool) {
	jobs, err := cfg.Jobs()
	if err != nil {
		klog.Errorf("%+v", err)
		return
	}
	for _, job := range jobs {
		if !all && !changed[absPath(job.IDLPath)] {
			continue
		}
		if err := generate(job); err != nil {
			klog.Errorf("%+v", err)
		}
	}
}

// absPath returns the absolute form of path, used to match file events with configured paths.
func absPath(path string) string {
	return must.M1(filepath.Abs(path))
}
