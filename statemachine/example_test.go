package statemachine_test

import (
	"fmt"
	"time"

	"github.com/amp-labs/hfsm/statemachine"
)

// Example models a patrolling guard: an outer machine owns the
// patrol/chase decision while a nested machine walks the waypoints.
func Example() {
	playerSpotted := false

	patrol := statemachine.NewMachine("patrol")
	_ = patrol.AddState("waypointA", announce("walking to A"))
	_ = patrol.AddState("waypointB", announce("walking to B"))
	_ = patrol.AddTransition(statemachine.NewTransition("waypointA", "waypointB", nil))
	_ = patrol.AddTransition(statemachine.NewTransition("waypointB", "waypointA", nil))

	guard := statemachine.NewMachine("guard")
	_ = guard.AddState("patrol", patrol)
	_ = guard.AddState("chase", announce("chasing the player"))
	_ = guard.AddTransition(statemachine.NewTransition("patrol", "chase",
		func() bool { return playerSpotted }))
	_ = guard.AddTransition(statemachine.NewTransition("chase", "patrol",
		func() bool { return !playerSpotted }))

	if err := guard.Init(); err != nil {
		panic(err)
	}

	delta := 16 * time.Millisecond

	_ = guard.OnLogic(delta)
	_ = guard.OnLogic(delta)

	playerSpotted = true
	_ = guard.OnLogic(delta)

	playerSpotted = false
	_ = guard.OnLogic(delta)

	// Output:
	// walking to A
	// walking to B
	// walking to A
	// walking to B
	// chasing the player
	// walking to A
}

func announce(message string) *statemachine.FuncState[string] {
	return statemachine.NewFuncState(
		statemachine.WithOnEnter[string](func(*statemachine.FuncState[string]) error {
			fmt.Println(message)

			return nil
		}),
	)
}
