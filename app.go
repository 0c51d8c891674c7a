package mpm

import (
	"fmt"
	"reflect"
	"runtime"
	"time"
)

// State identifies a phase of a stateful App's top-level state machine.
// The engine itself runs stateless (Run loops the frame stages forever);
// State exists for hosts that want to gate modules behind e.g. Loading/Playing.
// Declared in schedule.go alongside Stage.

type systemFn any

const STATELESS_STATE State = 0

// Module installs systems and resources into the App at build time.
// The engine never subscribes to anything after Install returns; all
// per-frame reactions are plain systems run in stage order.
type Module interface {
	Install(app *App, commands *Commands)
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompAdd struct {
	eid        EntityId
	components []any
}

type pendingCompRemoval struct {
	eid        EntityId
	components []any
}

type App struct {
	stateful            bool
	stateMachineStarted bool
	stateTransitioning  bool
	initialState        State
	finalState          State
	nextState           State
	state               State

	stages            []Stage
	systems           map[string]map[State]map[statePhase][]systemFn
	systemsStateless  map[string][]systemFn
	modules           []Module
	resources         map[reflect.Type]any
	ecs               *Ecs

	pendingAdditions    []pendingAdd
	pendingCompAdds     []pendingCompAdd
	pendingCompRemovals []pendingCompRemoval
	pendingRemovals     []EntityId

	verboseSystemTiming bool
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// GetResource returns the *T resource a module registered with
// AddResources, for hosts that own the frame loop (a windowed renderer
// reading CameraResource/AudioInput/PresetRequests between Step calls)
// instead of reaching into the engine through a system. Panics if nothing
// of that type was ever added, the same way callSystemInternal does for an
// unresolvable system dependency.
func GetResource[T any](app *App) *T {
	t := reflect.TypeOf((*T)(nil)).Elem()
	resource, ok := app.resources[t]
	if !ok {
		panic(fmt.Sprintf("GetResource: no resource of type %s", t))
	}
	return resource.(*T)
}

func (app *App) Run() {
	app.build()
	if app.stateful {
		app.runStateful()
	} else {
		app.runStateless()
	}
}

// Build installs every module's systems and resources without entering the
// frame loop, for hosts that drive their own loop (a windowed renderer
// polling glfw events between Step calls) instead of calling Run.
func (app *App) Build() {
	app.build()
}

// Step runs exactly one frame of the stateless pipeline. Hosts that own
// their own loop (tests, an embedding renderer) call this directly instead
// of Run, after calling Build once.
func (app *App) Step() {
	for _, stage := range app.stages {
		app.callSystemsStateless(stage)
	}
	app.flushPending()
}

func (app *App) runStateful() {
	app.executeChangeState(app.initialState)

	for {
		for _, stage := range app.stages {
			app.callSystems(stage, app.state, execute)
		}
		app.flushPending()

		if app.stateTransitioning {
			app.stateTransitioning = false
			app.executeChangeState(app.nextState)
		}

		if app.state == app.finalState {
			break
		}
	}

	for _, stage := range app.stages {
		app.callSystems(stage, app.state, exit)
	}
}

func (app *App) runStateless() {
	for {
		app.Step()
	}
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	if !app.stateMachineStarted {
		app.stateMachineStarted = true
		app.state = newState
		for _, stage := range app.stages {
			app.callSystems(stage, app.state, enter)
		}
		return
	}
	for _, stage := range app.stages {
		app.callSystems(stage, app.state, exit)
	}
	app.state = newState
	for _, stage := range app.stages {
		app.callSystems(stage, app.state, enter)
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}
		app.resources[resourceType.Elem()] = resource
	}
	return app
}

func (app *App) callSystemsStateless(stage Stage) {
	for _, system := range app.systemsStateless[stage.Name] {
		app.callSystem(system)
	}
}

func (app *App) callSystems(stage Stage, state State, phase statePhase) {
	for _, system := range app.systemsStateless[stage.Name] {
		app.callSystem(system)
	}
	if systemsInStage, ok := app.systems[stage.Name]; ok {
		if systemsInState, ok := systemsInStage[state]; ok {
			for _, system := range systemsInState[phase] {
				app.callSystem(system)
			}
		}
	}
}

func (app *App) callSystem(system systemFn) {
	start := time.Now()
	app.callSystemInternal(system)
	if app.verboseSystemTiming {
		fmt.Println(
			"system",
			runtime.FuncForPC(reflect.ValueOf(system).Pointer()).Name(),
			time.Since(start).Milliseconds(),
			"ms",
		)
	}
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystemInternal(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			resourceVal := reflect.ValueOf(resource)
			args[i] = reflect.NewAt(underlyingType, resourceVal.UnsafePointer())
		} else {
			msg := fmt.Sprintf("unable to resolve system dependency\nsystem: %s\ntype: %s\ndependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			panic(msg)
		}
	}
	systemValue.Call(args)
}

// flushPending applies entity/component mutations queued via Commands
// during this frame's systems. Mutations never apply mid-system; this is
// the sole place the ECS is mutated outside of init.
func (app *App) flushPending() {
	for _, add := range app.pendingAdditions {
		app.ecs.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		app.ecs.addComponents(add.eid, add.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, rem := range app.pendingCompRemovals {
		app.ecs.removeComponents(rem.eid, rem.components...)
	}
	app.pendingCompRemovals = app.pendingCompRemovals[:0]

	for _, eid := range app.pendingRemovals {
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]
}
