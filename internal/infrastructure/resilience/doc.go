/*
Package resilience provides a circuit breaker for the content source.

# Overview

When the content backend is down every page would otherwise wait for the
full request timeout. The breaker opens after a run of consecutive failures
and rejects calls with ErrCircuitOpen until a cooldown elapses; one probe
call then decides whether to close again.

The breaker never retries. Callers decide what counts as a failure through
Settings.IsFailure (a 404 for a missing course is not a backend failure).

# Usage

	breaker := resilience.New("content", resilience.Settings{
		Threshold: 5,
		Cooldown:  30 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state", zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	err := breaker.Execute(func() error {
		return fetch(ctx)
	})

# States

	Closed --[Threshold failures]-> Open --[Cooldown]-> Half-Open --[probe ok]-> Closed
	                                                       |
	                                                 [probe failed]
	                                                       v
	                                                     Open
*/
package resilience
