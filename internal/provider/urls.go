package provider

import "net/url"

// Browser self-service flows hosted by the provider.
const (
	FlowLogin        = "login"
	FlowRegistration = "registration"
	FlowVerification = "verification"
)

// FlowURL returns the browser URL for the given self-service flow on the
// provider's public host. If returnTo is non-empty it is carried as the
// return_to query parameter so the provider redirects back after the flow.
func (c *FrontendClient) FlowURL(flow, returnTo string) string {
	u := c.BaseURL + "/self-service/" + flow + "/browser"
	if returnTo != "" {
		u += "?return_to=" + url.QueryEscape(returnTo)
	}
	return u
}

// LoginURL returns the hosted login flow URL, carrying returnTo when set.
func (c *FrontendClient) LoginURL(returnTo string) string {
	return c.FlowURL(FlowLogin, returnTo)
}

// RegistrationURL returns the hosted registration flow URL, carrying returnTo when set.
func (c *FrontendClient) RegistrationURL(returnTo string) string {
	return c.FlowURL(FlowRegistration, returnTo)
}
