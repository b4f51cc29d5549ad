// Package auth implements account email confirmation and password reset
// workflows on top of single use verification tokens.
//
// Response codes:
//   - A response code packs an account id and a raw token into one URL safe
//     string (see the responsecode package). Codes are carried in links sent
//     by email and decoded again when the link is followed.
//
// Workflows:
//   - ConfirmationWorkflow confirms an account from a response code and
//     re-sends confirmation links on request.
//   - PasswordResetWorkflow sends reset links (or raw codes) and stores new
//     passwords once a code is presented.
//   - Every call returns exactly one outcome from a closed set. Outcomes map
//     to a Presentation the HTTP layer renders without further branching.
//   - Resend and reset requests render the same acknowledgement whether or
//     not an account matches the submitted address.
//
// Storage:
//   - RepositoryIdentityStore keeps users and hashed tokens through
//     go-repository-bun. Tokens are consumed with a conditional update so a
//     code confirms an account at most once, even under concurrent requests.
//
// Extension points:
//   - Notifier delivers links and codes (see the mailer package for SMTP).
//   - ActivitySink and OutcomeRecorder receive audit events and outcome
//     counts (see the metrics package for Prometheus).
package auth
