package service

import (
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/models"
)

// Recorder receives domain measurements; the metrics package implements it
type Recorder interface {
	StockReported(status models.StockStatus)
	NearbyQuery(elapsed time.Duration, results int)
}

type nopRecorder struct{}

func (nopRecorder) StockReported(models.StockStatus) {}
func (nopRecorder) NearbyQuery(time.Duration, int)   {}
