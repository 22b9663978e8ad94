// Package email delivers notification emails through Postmark, or through
// DevSender which writes them to disk during local development.
//
//	sender, err := email.New(cfg)
//	switch {
//	case errors.Is(err, email.ErrDisabled):
//		// run without email
//	case err != nil:
//		return err
//	}
//
// Bodies are rendered with the templ components in the templates
// subpackage.
package email
