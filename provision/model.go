package provision

import (
	"time"

	"github.com/jtarchie/environments/storage"
)

// Step names a stage of a workflow.
type Step string

const (
	StepPullingImage      Step = "pulling image"
	StepCreatingContainer Step = "creating container"
	StepStarting          Step = "starting container"
	StepPersisting        Step = "persisting container"
	StepDone              Step = "done"

	StepListingRecords    Step = "listing records"
	StepListingContainers Step = "listing engine containers"
	StepFinding           Step = "finding container"
	StepDeleting          Step = "deleting container"
)

// Container is the value returned to callers.
type Container struct {
	ID        string    `json:"id"        yaml:"id"`
	Name      string    `json:"name"      yaml:"name"`
	Image     string    `json:"image"     yaml:"image"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

type ContainerList struct {
	Containers      []Container `json:"containers"      yaml:"containers"`
	ContainersCount int         `json:"containersCount" yaml:"containersCount"`
}

type CreateRequest struct {
	Name  string `json:"name"  validate:"required,container_name"`
	Image string `json:"image" validate:"required"`
}

func fromRecord(record storage.Container) Container {
	return Container{
		ID:        record.ID,
		Name:      record.Name,
		Image:     record.Image,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func newContainerList(containers []Container) *ContainerList {
	if containers == nil {
		containers = []Container{}
	}

	return &ContainerList{
		Containers:      containers,
		ContainersCount: len(containers),
	}
}
