package mailer

import (
	"fmt"
	"html/template"
)

// Template names, one per notification email the platform sends.
const (
	TplActivationAccount      = "activationAccount"
	TplActivationSuccess      = "activationSuccess"
	TplActivationEmail        = "activationEmail"
	TplEmailChanged           = "emailChanged"
	TplForgotPassword         = "forgotPassword"
	TplPasswordReset          = "passwordResetInstructions"
	TplPasswordChanged        = "passwordChanged"
	TplBlockAccount           = "blockAccount"
	TplUnblockAccount         = "unblockAccount"
	TplOwnerDeleteAccount     = "ownerDeleteAccount"
	TplUserDeleteAccount      = "userDeleteAccount"
	TplUpdatedRole            = "updatedRole"
	TplCourseUpdate           = "newUpdateNotificationForUser"
	TplCourseDeleted          = "courseDeletedNotificationForUser"
	TplNewQuestion            = "newQuestionNotificationForOwner"
	TplNewAnswer              = "newAnswerNotificationForUser"
	TplNewReview              = "newReviewNotificationForOwner"
	TplNewReviewReply         = "newReplyNotificationForUser"
	TplCoursePurchase         = "coursePurchaseNotification"
	TplCoursePurchaseForOwner = "coursePurchaseNotificationForOwner"
)

var bodies = map[string]*template.Template{
	TplActivationAccount: parse(TplActivationAccount, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Use the code below to activate your account. It expires in 5 minutes.</p>
<div class="info-box"><strong>{{.ActivationCode}}</strong></div>`),

	TplActivationSuccess: parse(TplActivationSuccess, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Your account has been activated. Welcome aboard.</p>`),

	TplActivationEmail: parse(TplActivationEmail, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Use the code below to confirm your new email address.</p>
<div class="info-box"><strong>{{.ActivationCode}}</strong></div>`),

	TplEmailChanged: parse(TplEmailChanged, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>The email on your account was changed to {{.NewEmail}}. If this was not
you, contact support immediately.</p>`),

	TplForgotPassword: parse(TplForgotPassword, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>We received a request to reset your password. Use the code below.</p>
<div class="info-box"><strong>{{.ActivationCode}}</strong></div>`),

	TplPasswordReset: parse(TplPasswordReset, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>An administrator requested a password reset for your account. Follow the
link below to choose a new password.</p>
<p><a class="btn" href="{{.URL}}">Reset password</a></p>`),

	TplPasswordChanged: parse(TplPasswordChanged, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Your password was changed. If this was not you, contact support.</p>`),

	TplBlockAccount: parse(TplBlockAccount, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Your account was suspended because {{.Reason}}.</p>`),

	TplUnblockAccount: parse(TplUnblockAccount, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Your account is active again.</p>`),

	TplOwnerDeleteAccount: parse(TplOwnerDeleteAccount, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Your account was deleted: {{.Reason}}.</p>`),

	TplUserDeleteAccount: parse(TplUserDeleteAccount, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Your account has been deleted as you requested. We are sorry to see you
go.</p>`),

	TplUpdatedRole: parse(TplUpdatedRole, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Your role has been updated to <strong>{{.Role}}</strong>.</p>`),

	TplCourseUpdate: parse(TplCourseUpdate, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>{{.CourseTitle}} has a new update: <strong>{{.UpdateTitle}}</strong></p>
<p>{{.UpdateDescription}}</p>`),

	TplCourseDeleted: parse(TplCourseDeleted, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>{{.CourseTitle}} has been removed because {{.Reason}}.</p>`),

	TplNewQuestion: parse(TplNewQuestion, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>{{.UserFirstName}} {{.UserLastName}} ({{.UserEmail}}) asked a question in
{{.CourseTitle}}:</p>
<div class="info-box">{{.QuestionContent}}</div>`),

	TplNewAnswer: parse(TplNewAnswer, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Your question in {{.CourseTitle}} has a new answer.</p>
<div class="info-box"><p>Q: {{.Question}}</p><p>A: {{.Answer}}</p></div>`),

	TplNewReview: parse(TplNewReview, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>{{.ReviewerFirstName}} {{.ReviewerLastName}} left a {{.Rating}}-star
review on {{.CourseTitle}}:</p>
<div class="info-box">{{.ReviewContent}}</div>`),

	TplNewReviewReply: parse(TplNewReviewReply, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Your review on {{.CourseTitle}} has a new reply.</p>`),

	TplCoursePurchase: parse(TplCoursePurchase, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Thank you for purchasing <strong>{{.Title}}</strong> on
{{.PurchaseDate}} for {{.Amount}}. Happy learning!</p>`),

	TplCoursePurchaseForOwner: parse(TplCoursePurchaseForOwner, `
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>{{.UserFirstName}} {{.UserLastName}} ({{.UserEmail}}) just purchased
<strong>{{.Title}}</strong>.</p>`),
}

func parse(name, body string) *template.Template {
	return template.Must(template.New(name).Parse(body))
}

// wrap puts a rendered body inside the shared shell.
func wrap(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
.header { background-color: #1A237E; padding: 30px; text-align: center; }
.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
.content { padding: 40px 30px; color: #1A237E; line-height: 1.6; }
.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
.btn { display: inline-block; padding: 12px 24px; background-color: #FFB300; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; }
.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #FFB300; margin: 20px 0; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>ACADEX</h1></div>
<div class="content"><h2>%s</h2>%s</div>
<div class="footer">&copy; Acadex. All rights reserved.</div>
</div>
</body>
</html>`, title, body)
}
