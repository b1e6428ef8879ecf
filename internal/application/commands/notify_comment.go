package commands

import (
	"context"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/interfaces"
	"github.com/go-playground/validator/v10"
)

type CommentNotification struct {
	ProjectName    string `json:"projectName" validate:"required"`
	AuthorName     string `json:"authorName" validate:"required"`
	CommentText    string `json:"commentText" validate:"required"`
	CommentURL     string `json:"commentUrl" validate:"omitempty,url"`
	RecipientEmail string `json:"recipientEmail" validate:"required,email"`
}

// NotifyComment emails a project member about a new comment on one of
// their projects.
type NotifyComment struct {
	mailer   interfaces.Mailer
	validate *validator.Validate
}

func NewNotifyComment(mailer interfaces.Mailer) *NotifyComment {
	return &NotifyComment{mailer: mailer, validate: validator.New()}
}

func (n *NotifyComment) Execute(ctx context.Context, notification CommentNotification) error {
	if err := n.validate.Struct(notification); err != nil {
		return err
	}
	return n.mailer.SendCommentNotification(ctx, dto.CommentMail{
		RecipientEmail: notification.RecipientEmail,
		ProjectName:    notification.ProjectName,
		AuthorName:     notification.AuthorName,
		CommentText:    notification.CommentText,
		CommentURL:     notification.CommentURL,
	})
}
