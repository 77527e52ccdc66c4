// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"
)

// watcher - re-read the configuration file when it changes and apply
// its migration section
type watcher struct {
	log      *logger.L
	fileName string
	watcher  *fsnotify.Watcher
	apply    func(MigrationType)
}

// the directory is watched so that editors replacing the file are seen
func newWatcher(fileName string, apply func(MigrationType)) (*watcher, error) {
	fileName, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}
	err = w.Add(filepath.Dir(fileName))
	if nil != err {
		w.Close()
		return nil, err
	}

	return &watcher{
		log:      logger.New("watcher"),
		fileName: fileName,
		watcher:  w,
		apply:    apply,
	}, nil
}

// Run - background process
func (w *watcher) Run(args interface{}, shutdown <-chan struct{}) {
	w.log.Infof("watching: %q", w.fileName)

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case event, ok := <-w.watcher.Events:
			if !ok {
				break loop
			}
			if filepath.Base(event.Name) != filepath.Base(w.fileName) {
				continue
			}
			w.log.Debugf("file event: %v", event)

			if isRemove(event) {
				w.log.Warnf("configuration file: %q removed", w.fileName)
				continue
			}
			if isChange(event) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				break loop
			}
			w.log.Errorf("watch error: %s", err)
		}
	}

	w.watcher.Close()
	w.log.Info("stopped")
}

func (w *watcher) reload() {
	c, err := getConfiguration(w.fileName)
	if nil != err {
		w.log.Errorf("failed to read configuration from: %q  error: %s", w.fileName, err)
		return
	}
	w.log.Infof("migration: %+v", c.Migration)
	w.apply(c.Migration)
}

func isRemove(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Remove|fsnotify.Rename) != 0
}

func isChange(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}
