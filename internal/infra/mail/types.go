package mail

import "fmt"

type MailType string

const (
	WelcomeAgency       MailType = "WelcomeAgency"
	ProvisioningSuccess MailType = "ProvisioningSuccess"
	ProvisioningFailure MailType = "ProvisioningFailure"
	NewComment          MailType = "NewComment"
)

type MailData interface {
	GetMailType() MailType
	GetSubject() string
}

type WelcomeAgencyData struct {
	AgencyName  string
	InstanceURL string
	SetupURL    string
}

func (w WelcomeAgencyData) GetMailType() MailType {
	return WelcomeAgency
}

func (w WelcomeAgencyData) GetSubject() string {
	return fmt.Sprintf("Welcome to The Lost Project - %v", w.AgencyName)
}

type ProvisioningSuccessData struct {
	AgencyName  string
	AdminEmail  string
	InstanceURL string
}

func (p ProvisioningSuccessData) GetMailType() MailType {
	return ProvisioningSuccess
}

func (p ProvisioningSuccessData) GetSubject() string {
	return fmt.Sprintf("Agency Provisioned: %v", p.AgencyName)
}

type ProvisioningFailureData struct {
	AgencyName   string
	AdminEmail   string
	ErrorMessage string
}

func (p ProvisioningFailureData) GetMailType() MailType {
	return ProvisioningFailure
}

func (p ProvisioningFailureData) GetSubject() string {
	return fmt.Sprintf("Provisioning Failed: %v", p.AgencyName)
}

type NewCommentData struct {
	ProjectName string
	AuthorName  string
	CommentText string
	CommentURL  string
}

func (n NewCommentData) GetMailType() MailType {
	return NewComment
}

func (n NewCommentData) GetSubject() string {
	return fmt.Sprintf("New comment on %v", n.ProjectName)
}
