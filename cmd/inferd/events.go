package main

import (
	"github.com/rs/zerolog"

	"inferd/internal/manager"
)

// logPublisher forwards manager lifecycle events to the structured log.
type logPublisher struct {
	log zerolog.Logger
}

func (p logPublisher) Publish(ev manager.Event) {
	e := p.log.Info()
	if ev.Model != "" {
		e = e.Str("model", ev.Model)
	}
	if len(ev.Fields) > 0 {
		e = e.Fields(ev.Fields)
	}
	e.Msg(ev.Name)
}
