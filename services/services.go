// Package services holds the marketplace business rules. Services take
// repository interfaces and return the error kinds from models.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"marketplace-service/models"
	"marketplace-service/repository"
)

// EventPublisher delivers order events to downstream consumers.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkVar runs one validator tag against value and reports failures on field.
func checkVar(field string, value any, tag, message string) error {
	if err := validate.Var(value, tag); err != nil {
		return models.Invalid(field, message)
	}
	return nil
}

// notFound maps a repository miss onto the domain NotFound kind.
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return models.NotFound(what)
	}
	return err
}

func requireBuyer(actor models.Actor) error {
	switch actor.Role {
	case models.RoleBuyer:
		return nil
	case models.RoleVendor:
		return models.Forbidden("buyer account required")
	default:
		return models.Forbidden("unknown account type")
	}
}

func requireVendor(actor models.Actor) error {
	switch actor.Role {
	case models.RoleVendor:
		return nil
	case models.RoleBuyer:
		return models.Forbidden("vendor account required")
	default:
		return models.Forbidden("unknown account type")
	}
}

func newID() string {
	return uuid.NewString()
}

// publishOrderEvent is fire-and-forget: failures are logged and dropped.
func publishOrderEvent(ctx context.Context, events EventPublisher, users repository.UserRepository, event models.OrderEvent) {
	if events == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if u, err := users.GetByID(ctx, event.BuyerID); err == nil {
		event.BuyerEmail = u.Email
	}
	if err := events.PublishOrderEvent(ctx, event); err != nil {
		slog.Error("Failed to publish order event", "type", event.Type, "order_id", event.OrderID, "err", err)
	}
}

func sendMail(ctx context.Context, mailer Mailer, to, subject, body string) {
	if mailer == nil {
		return
	}
	if err := mailer.Send(context.WithoutCancel(ctx), to, subject, body); err != nil {
		slog.Error("Failed to send email", "to", to, "subject", subject, "err", err)
	}
}
