package domain

// Sizes of the field encryption primitives, in bytes.
//
// Every field is encrypted with AES-256-GCM under a fresh data key. The tag is
// stored separately from the ciphertext so each envelope column has a fixed
// meaning.
const (
	// DataKeySize is the length of a data encryption key (AES-256).
	DataKeySize = 32

	// NonceSize is the AES-GCM nonce length (96 bits).
	NonceSize = 12

	// TagSize is the AES-GCM authentication tag length (128 bits).
	TagSize = 16

	// IndexKeySize is the recommended length of a blind index key.
	IndexKeySize = 32
)

// CurrentKeyVersion is the envelope layout version written by this build.
const CurrentKeyVersion = 1

// Provider identifies a keyring implementation. The set is closed: Keyring
// construction switches over these values and rejects anything else.
type Provider string

const (
	// ProviderDevelopment wraps data keys with a locally configured master key.
	ProviderDevelopment Provider = "development"

	// ProviderAWS is a placeholder for AWS KMS.
	ProviderAWS Provider = "aws"

	// ProviderGCP is a placeholder for Google Cloud KMS.
	ProviderGCP Provider = "gcp"

	// ProviderAzure is a placeholder for Azure Key Vault.
	ProviderAzure Provider = "azure"

	// ProviderKeeper wraps data keys through a gocloud.dev secrets keeper
	// (base64key:// for local use, hashivault:// for Vault transit).
	ProviderKeeper Provider = "keeper"
)

// ParseProvider maps a configured provider name onto a Provider.
// "dev" is accepted as an alias of "development".
func ParseProvider(name string) (Provider, error) {
	switch Provider(name) {
	case "dev", ProviderDevelopment:
		return ProviderDevelopment, nil
	case ProviderAWS, ProviderGCP, ProviderAzure, ProviderKeeper:
		return Provider(name), nil
	default:
		return "", unknownProvider(name)
	}
}

// DisplayName returns the human readable provider name used in error messages.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderDevelopment:
		return "Development"
	case ProviderAWS:
		return "AWS KMS"
	case ProviderGCP:
		return "GCP KMS"
	case ProviderAzure:
		return "Azure Key Vault"
	case ProviderKeeper:
		return "Secrets keeper"
	default:
		return string(p)
	}
}
