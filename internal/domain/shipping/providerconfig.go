package shipping

import "github.com/google/uuid"

// ProviderConfig is the (shop, providerCode) -> credentials+settings row of
// data model. EncryptedCredentials is the AES-256-CBC ciphertext at
// rest; the Facade decrypts it via ports.CredentialVault before
// passing the result to a Constructor.
type ProviderConfig struct {
	ShopID               uuid.UUID
	ProviderCode         ProviderCode
	EncryptedCredentials []byte
	Sandbox              bool
	IsEnabled            bool
	IsDefault            bool
}
