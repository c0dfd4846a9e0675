// Package google holds the OAuth2 credential lifecycle for the Google
// Calendar account linked to the bot.
//
// A single CredentialStore owns the client id/secret and the current token
// set. Tokens get into the store in two ways: an authorization code
// exchange (ApplyExchange, driven by the setup flow) or an automatic
// refresh performed by the token source handed to the Calendar client.
// Both paths go through one writer so every handler observes the most
// recently obtained tokens.
package google
