/*
Package codesdk is a Go client for the authcodes HTTP API.

Public operations, used by the app backend when a user follows an emailed
link:

	client := codesdk.NewClient("https://codes.example.com")

	res, err := client.ValidateEmailConfirmation(ctx, code)
	if codesdk.IsErrorCode(err, codesdk.ErrorCodeExpiredCode) {
		// ask the user to request a new email
	}

	status, err := client.GetCodeStatus(ctx, code)

	delivery, err := client.SendPasswordReset(ctx, codesdk.SendCodeRequest{
		Email:  "keeper@example.com",
		UserID: "user-123",
	})

Admin operations need a bearer token carrying the codes:admin scope:

	admin := client.WithToken(token)
	report, err := admin.PerformCleanup(ctx)
	codes, err := admin.ListUserCodes(ctx, "user-123", "")
	err = admin.RevokeCode(ctx, codeID)

The request and response types in this package are the wire contract of
the service; the server encodes exactly these structs.
*/
package codesdk
