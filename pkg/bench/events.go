package bench

type (
	// EventSetScenarioTotal is sent when the number of scenarios in the run
	// is known.
	EventSetScenarioTotal int

	// EventRunningScenario is sent when a scenario starts.
	EventRunningScenario string

	// EventRanScenario is sent when a scenario completes.
	EventRanScenario struct {
		Err      error
		Scenario string
	}

	// EventDone is sent when the whole run completes.
	EventDone struct {
		Err error
	}
)
