package config

import (
	"context"

	"tollcalc/internal/toll"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// WatchSchedule reloads the schedule at path whenever the file is written and passes it
// to onChange. A reload that fails keeps the previous schedule. It runs until ctx is done.
func WatchSchedule(ctx context.Context, path string, onChange func(toll.Schedule)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	log.Info().Str("path", path).Msg("Watching rate schedule for changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, so Create counts as a write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			s, err := LoadSchedule(path)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("Schedule reload failed, keeping previous schedule")
				continue
			}

			log.Info().Str("path", path).Msg("Rate schedule reloaded")
			onChange(s)

			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("Schedule watcher error")
		}
	}
}
