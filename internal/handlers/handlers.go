package handlers

import (
	"time"

	"vicom/internal/delivery"
	"vicom/internal/pipeline"
	"vicom/internal/removebg"
)

type Handlers struct {
	pipeline  *pipeline.Pipeline
	delivery  *delivery.Service
	removebg  *removebg.Runner
	startTime time.Time
}

func New(pipe *pipeline.Pipeline, del *delivery.Service, rbg *removebg.Runner) *Handlers {
	return &Handlers{
		pipeline:  pipe,
		delivery:  del,
		removebg:  rbg,
		startTime: time.Now(),
	}
}
