package iotf

import "context"

// EventHandler receives device events and commands, in arrival order.
// Calls are made synchronously from the transport's delivery goroutine.
type EventHandler interface {
	HandleEvent(ctx context.Context, e *Event)
	HandleCommand(ctx context.Context, cmd *Command)
}

// StatusHandler receives application and device presence changes, in arrival order.
type StatusHandler interface {
	HandleApplicationStatus(ctx context.Context, s *ApplicationStatus)
	HandleDeviceStatus(ctx context.Context, s *DeviceStatus)
}

// EventHandlerFuncs adapts plain functions to EventHandler. Nil funcs are skipped.
type EventHandlerFuncs struct {
	OnEvent   func(context.Context, *Event)
	OnCommand func(context.Context, *Command)
}

// HandleEvent implements EventHandler.
func (f EventHandlerFuncs) HandleEvent(ctx context.Context, e *Event) {
	if f.OnEvent != nil {
		f.OnEvent(ctx, e)
	}
}

// HandleCommand implements EventHandler.
func (f EventHandlerFuncs) HandleCommand(ctx context.Context, cmd *Command) {
	if f.OnCommand != nil {
		f.OnCommand(ctx, cmd)
	}
}

// StatusHandlerFuncs adapts plain functions to StatusHandler. Nil funcs are skipped.
type StatusHandlerFuncs struct {
	OnApplicationStatus func(context.Context, *ApplicationStatus)
	OnDeviceStatus      func(context.Context, *DeviceStatus)
}

// HandleApplicationStatus implements StatusHandler.
func (f StatusHandlerFuncs) HandleApplicationStatus(ctx context.Context, s *ApplicationStatus) {
	if f.OnApplicationStatus != nil {
		f.OnApplicationStatus(ctx, s)
	}
}

// HandleDeviceStatus implements StatusHandler.
func (f StatusHandlerFuncs) HandleDeviceStatus(ctx context.Context, s *DeviceStatus) {
	if f.OnDeviceStatus != nil {
		f.OnDeviceStatus(ctx, s)
	}
}

// OnConnectionLostHandler is a callback type which can be set to be
// executed upon an unintended disconnection from the platform.
type OnConnectionLostHandler func(error)
