// Package auth stores Instagram Graph API access tokens per account.
//
// A Manager tries its stores in order: the system keychain when one is
// available, an AES-GCM encrypted file whose key is derived with PBKDF2,
// and finally a read-only account taken from the environment
// (IGANALYTICS_ACCESS_TOKEN or ACCESS_TOKEN).
package auth
