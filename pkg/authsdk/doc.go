/*
Package authsdk is a small client for the siteauth HTTP API, plus the wire
types the server renders.

# Overview

Request and response bodies follow the Ghost envelope convention: the
payload of a resource is wrapped in a one-element array under the resource
name.

	{"setup": [{"name": "...", "email": "...", "password": "...", "blogTitle": "..."}]}

Errors always have the same shape:

	{"errors": [{"id": "01J...", "type": "NotFoundError", "message": "..."}]}

and surface from the client as *APIError.

# Sessions

Staff sessions are cookie based. Client keeps a cookie jar, so a successful
Setup, AcceptInvitation or Login leaves the client signed in:

	c := authsdk.NewClient("https://blog.example.com")

	if _, err := c.Setup(ctx, authsdk.SetupData{...}); err != nil {
		return err
	}
	err := c.ResetAllPasswords(ctx)

Automation that holds an internal bearer token (see `siteauth
internal-token`) sets Client.BearerToken instead.

# Errors

	err := c.ConfirmPasswordReset(ctx, token, "new password")
	if authsdk.IsErrorType(err, authsdk.TypeInvalidOrExpired) {
		// ask the user to request a fresh link
	}
*/
package authsdk
