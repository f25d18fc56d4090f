// cmd/rigid2d/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-rigid2d/pkg/config"
	"github.com/opd-ai/go-rigid2d/pkg/event"
	"github.com/opd-ai/go-rigid2d/pkg/logging"
	"github.com/opd-ai/go-rigid2d/pkg/physics"
	"github.com/opd-ai/go-rigid2d/pkg/system"
)

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithCorrelationID(context.Background(), "")

	configPath := flag.String("config", "scene.yaml", "Path to scene file (.json, .yaml or .yml)")
	createDefault := flag.Bool("default", false, "Write the default scene to -config and exit")
	steps := flag.Int("steps", 0, "Override the number of steps to run")
	flag.Parse()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default scene", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default scene file",
			"config_path", *configPath,
		)
		return
	}

	var simConfig *config.SimulationConfig
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Info(ctx, "Scene file not found, using default scene",
			"config_path", *configPath,
		)
		simConfig = config.DefaultConfig()
	} else {
		simConfig, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.Error(ctx, "Failed to load scene", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
	}

	if err := config.ApplyEnvironmentOverrides(simConfig); err != nil {
		logger.Error(ctx, "Invalid configuration", err)
		os.Exit(1)
	}
	if *steps > 0 {
		simConfig.Steps = *steps
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, simConfig, logger); err != nil {
		logger.Error(ctx, "Simulation failed", err)
		os.Exit(1)
	}
}

// run builds the scene described by simConfig, steps it through an ECS world
// and logs every collision and the final body positions.
func run(ctx context.Context, simConfig *config.SimulationConfig, logger *logging.Logger) error {
	solverConfig, opts := simConfig.Physics.SolverOptions()
	solver, err := physics.NewSolver(solverConfig, opts...)
	if err != nil {
		return logging.WrapError(err, "create solver")
	}

	bodies, err := simConfig.BuildBodies()
	if err != nil {
		return logging.WrapError(err, "build bodies")
	}

	bus := event.NewEventBus()
	physicsSystem := system.NewPhysicsSystem(solver, bus, logger)
	physicsSystem.SetContext(ctx)

	world := &ecs.World{}
	world.AddSystem(physicsSystem)

	names := make(map[uint64]string, len(bodies))
	for i, body := range bodies {
		basic := ecs.NewBasic()
		names[basic.ID()] = simConfig.Bodies[i].Name
		physicsSystem.Add(&basic, body)
	}

	collisions := 0
	bus.Subscribe(event.BodyCollision, func(e event.Event) {
		c := e.(*event.CollisionEvent)
		collisions++
		logger.Info(ctx, "Collision",
			"step", physicsSystem.Steps(),
			"body_a", names[c.EntityA],
			"body_b", names[c.EntityB],
			"penetration", c.Penetration,
			"mtv_x", c.MTV.X,
			"mtv_y", c.MTV.Y,
		)
	})

	logger.Info(ctx, "Starting simulation",
		"bodies", len(bodies),
		"steps", simConfig.Steps,
		"time_step", simConfig.TimeStep,
		"broad_phase", simConfig.Physics.BroadPhase,
	)

	for i := 0; i < simConfig.Steps; i++ {
		if err := ctx.Err(); err != nil {
			logger.Warn(ctx, "Simulation interrupted", "completed_steps", i)
			break
		}
		world.Update(float32(simConfig.TimeStep))
	}

	for _, id := range physicsSystem.Entities() {
		body, _ := physicsSystem.Body(id)
		logger.Info(ctx, "Final position",
			"body", names[id],
			"x", body.Position.X,
			"y", body.Position.Y,
			"fixed", body.Fixed,
		)
	}
	logger.Info(ctx, "Simulation finished",
		"steps", physicsSystem.Steps(),
		"collisions", collisions,
	)
	return nil
}
