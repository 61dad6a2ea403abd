package notifier

import (
	"fmt"

	"user-management-service/internal/domain"
)

// Email types recorded in email_logs.
const (
	EmailTypeGeneric                = "generic"
	EmailTypeWelcome                = "welcome"
	EmailTypePasswordChangeRequest  = "password-change-request"
	EmailTypePasswordChangeApproved = "password-change-approved"
	EmailTypePasswordChangeRejected = "password-change-rejected"
	EmailTypeAccountUpdated         = "account-updated"
	EmailTypeAccountDeleted         = "account-deleted"
	EmailTypeAdminAlert             = "admin-alert"
	EmailTypeBroadcast              = "broadcast"
)

// message is one fully rendered notification: the in-app row content plus
// the email subject and bodies.
type message struct {
	Title     string
	Message   string
	Priority  domain.NotificationPriority
	EmailType string
	Text      string
	HTML      string
}

func genericMessage(title, body string, priority domain.NotificationPriority, emailType string) message {
	return message{
		Title:     title,
		Message:   body,
		Priority:  priority,
		EmailType: emailType,
		Text:      body,
		HTML:      fmt.Sprintf("<h2>%s</h2><br><p>%s</p>", title, body),
	}
}

func welcomeMessage(name string) message {
	return message{
		Title:     "Welcome to User Management System",
		Message:   "Your account has been created successfully.",
		Priority:  domain.PriorityHigh,
		EmailType: EmailTypeWelcome,
		Text: fmt.Sprintf("Welcome %s!\n\n"+
			"Your account has been created successfully.\n"+
			"Please set a personal password after your first login.", name),
		HTML: fmt.Sprintf("<h2>Welcome to User Management System</h2><br>"+
			"<p>Hi %s, your account has been created successfully.</p>"+
			"<p>Please set a personal password after your first login.</p>", name),
	}
}

func passwordChangeRequestedMessage() message {
	return message{
		Title:     "Password Change Request",
		Message:   "A password change has been requested for your account.",
		Priority:  domain.PriorityHigh,
		EmailType: EmailTypePasswordChangeRequest,
		Text: "A password change has been requested for your account.\n" +
			"Please wait for admin approval.",
		HTML: "<h3>Password Change Request</h3><br>" +
			"<p>A password change has been requested for your account.</p><br>" +
			"<p>Please wait for admin approval.</p>",
	}
}

func adminReviewAlert(userID, name, email string) message {
	return message{
		Title:     "New Password Change Request",
		Message:   "A new password change request is waiting for review.",
		Priority:  domain.PriorityHigh,
		EmailType: EmailTypeAdminAlert,
		Text: fmt.Sprintf("A new password change request has been submitted by user:\n"+
			"User ID: %s\nUser Name: %s\nUser Email: %s\n\n"+
			"Please review and take appropriate action.", userID, name, email),
		HTML: fmt.Sprintf("<h3>New Password Change Request</h3><br>"+
			"<p>A new password change request has been submitted by user:</p>"+
			"<p><strong>User ID:</strong> %s</p>"+
			"<p><strong>User Name:</strong> %s</p>"+
			"<p><strong>User Email:</strong> %s</p><br>"+
			"<p>Please review and take appropriate action.</p>", userID, name, email),
	}
}

func passwordChangeApprovedMessage() message {
	return message{
		Title:     "Password Change Approved",
		Message:   "Your password change request has been approved.",
		Priority:  domain.PriorityHigh,
		EmailType: EmailTypePasswordChangeApproved,
		Text: "Your password change request has been approved.\n" +
			"Your new password is now active.",
		HTML: "<h3>Password Change Approved</h3><br>" +
			"<p>Your password change request has been approved.</p><br>" +
			"<p>Your new password is now active.</p>",
	}
}

func passwordChangeRejectedMessage() message {
	return message{
		Title:     "Password Change Request Rejected",
		Message:   "Your password change request has been rejected by the administrator.",
		Priority:  domain.PriorityHigh,
		EmailType: EmailTypePasswordChangeRejected,
		Text: "Your password change request has been rejected by the administrator.\n" +
			"If you believe this is an error, please contact support.",
		HTML: "<h3>Password Change Request Rejected</h3><br>" +
			"<p>Your password change request has been rejected by the administrator.</p><br>" +
			"<p>If you believe this is an error, please contact support.</p>",
	}
}

func accountUpdatedMessage() message {
	return message{
		Title:     "Account Updated",
		Message:   "Your account details have been updated.",
		Priority:  domain.PriorityMedium,
		EmailType: EmailTypeAccountUpdated,
		Text: "Your account details have been updated.\n" +
			"If you did not make this change, please contact support immediately.",
		HTML: "<h3>Account Updated</h3><br>" +
			"<p>Your account details have been updated.</p><br>" +
			"<p>If you did not make this change, please contact support immediately.</p>",
	}
}

func accountDeletedMessage() message {
	return message{
		Title:     "Account Deleted",
		Message:   "Your account has been deleted.",
		Priority:  domain.PriorityHigh,
		EmailType: EmailTypeAccountDeleted,
		Text: "Your account has been deleted.\n" +
			"If this was not you, please contact support immediately.",
		HTML: "<h3>Account Deleted</h3><br>" +
			"<p>Your account has been deleted.</p><br>" +
			"<p>If this was not you, please contact support immediately.</p>",
	}
}
