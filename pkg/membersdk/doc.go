/*
Package membersdk provides a client SDK for the alumnet membership service,
along with the request and response types the service itself speaks.

# SDKClient vs Session

  - SDKClient: public operations (health, bootstrap, login, invitation
    verification, registration) and the entry point for creating sessions.
  - Session: operations that need a bearer credential. The credential is
    the one returned by Login or Register and is not refreshed; once it
    expires the caller logs in again.

	client := membersdk.NewSDKClient("https://alumni.example.edu")

	// Public invitation flow
	email, err := client.VerifyInvitation(ctx, secret)
	session, err := client.Register(ctx, secret, membersdk.RegisterRequest{...})

	// Admin flow
	session, err := client.Login(ctx, "admin@example.edu", password)
	inv, err := session.Invite(ctx, "new@example.edu")
	res, err := session.BulkInvite(ctx, []string{"a@example.edu", "b@example.edu"})

# Errors

Non-2xx responses are returned as *APIError carrying the HTTP status and the
service's error code. Use errors.As to inspect them.
*/
package membersdk
