/*
Package resilience guards calls to flaky upstream services.

A Breaker counts consecutive failures. Once the threshold is reached it opens
and refuses calls for a cooldown, then admits one probe:

	Closed --[N failures]-> Open --[cooldown]-> Half-Open --[success]-> Closed
	                                                |
	                                            [failure]
	                                                v
	                                              Open

Usage:

	breaker := resilience.New("weather", resilience.Settings{Failures: 3, Cooldown: time.Minute})
	err := breaker.Do(ctx, func(ctx context.Context) error {
		return client.Fetch(ctx)
	})
*/
package resilience
