package game

import "time"

type periodicTickerFactory struct{}

// NewPeriodicTickerFactory returns the production TickerFactory backed by
// time.Tick. Tests substitute a factory handing out plain channels.
func NewPeriodicTickerFactory() TickerFactory {
	return periodicTickerFactory{}
}

func (periodicTickerFactory) Create(d time.Duration) <-chan time.Time {
	return time.Tick(d)
}
