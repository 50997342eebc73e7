package services

import (
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/app"
	pkgevents "github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	domainevents "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Task *TaskService
}

// New wires all task application services with infrastructure from the Application container.
// Sequence numbers come from Redis so they survive restarts and are shared
// across API instances.
func New(a *app.Application) *Services {
	repo := postgres.NewTaskRepository(a.Db)
	seq := pkgevents.NewRedisSequence(a.Redis.Client())
	builder := domainevents.NewBuilder(seq)
	publisher := pkgevents.NewPublisher(a.EventBus, a.Logger)
	router := NewEventRouter(builder, publisher, a.Logger)
	return &Services{
		Task: NewTaskService(repo, router),
	}
}
