package mpm

import "testing"

type counterResource struct {
	ticks int
}

type tickModule struct{}

func (tickModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&counterResource{})
	app.UseSystem(System(func(c *counterResource) {
		c.ticks++
	}).InStage(Update).RunAlways())
}

func TestApp_StepRunsInstalledSystems(t *testing.T) {
	app := NewApp().UseModules(tickModule{})
	app.build()

	for i := 0; i < 3; i++ {
		app.Step()
	}

	var got int
	for _, r := range app.resources {
		if c, ok := r.(*counterResource); ok {
			got = c.ticks
		}
	}
	if got != 3 {
		t.Fatalf("expected 3 ticks, got %d", got)
	}
}

func TestApp_GetResourceReturnsInstalledResource(t *testing.T) {
	app := NewApp().UseModules(tickModule{})
	app.build()
	app.Step()

	got := GetResource[counterResource](app)
	if got.ticks != 1 {
		t.Fatalf("expected 1 tick, got %d", got.ticks)
	}
}

func TestApp_GetResourcePanicsOnMissingType(t *testing.T) {
	app := NewApp()
	app.build()

	defer func() {
		if recover() == nil {
			t.Fatal("expected GetResource to panic for an unregistered type")
		}
	}()
	GetResource[counterResource](app)
}

func TestApp_StageOrderMatchesFrameOrchestrator(t *testing.T) {
	app := NewApp()
	app.build()
	want := []string{"Prelude", "PreUpdate", "Update", "PostUpdate", "PreRender", "Render", "PostRender", "Finale"}
	if len(app.stages) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(app.stages))
	}
	for i, s := range app.stages {
		if s.Name != want[i] {
			t.Fatalf("stage %d: expected %s, got %s", i, want[i], s.Name)
		}
	}
}
