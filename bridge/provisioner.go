package bridge

import (
	"context"

	"github.com/jtarchie/environments/provision"
)

// Provisioner exposes provision.Service to callers that block.
type Provisioner struct {
	handle  *Handle
	service *provision.Service
}

func NewProvisioner(handle *Handle, service *provision.Service) *Provisioner {
	return &Provisioner{
		handle:  handle,
		service: service,
	}
}

func (p *Provisioner) Create(name, image string) (*provision.Container, error) {
	return Run(p.handle, func(ctx context.Context) (*provision.Container, error) {
		return p.service.Create(ctx, provision.CreateRequest{Name: name, Image: image})
	})
}

func (p *Provisioner) List() (*provision.ContainerList, error) {
	return Run(p.handle, p.service.List)
}

func (p *Provisioner) Find(name string) (*provision.Container, error) {
	return Run(p.handle, func(ctx context.Context) (*provision.Container, error) {
		return p.service.Find(ctx, name)
	})
}

func (p *Provisioner) Delete(name string) (*provision.Container, error) {
	return Run(p.handle, func(ctx context.Context) (*provision.Container, error) {
		return p.service.Delete(ctx, name)
	})
}
