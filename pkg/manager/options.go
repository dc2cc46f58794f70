package manager

import "github.com/killallgit/promptvault/pkg/catalog"

type requestOptions struct {
	variantName      string
	description      string
	defaultVariant   string
	tags             map[string]string
	inference        *catalog.InferenceConfig
	encryptionKeyArn string
}

// RequestOption sets optional fields on create and version requests
type RequestOption func(*requestOptions)

// WithVariantName names the variant of a new prompt
func WithVariantName(name string) RequestOption {
	return func(o *requestOptions) { o.variantName = name }
}

// WithDescription describes a new prompt or version
func WithDescription(description string) RequestOption {
	return func(o *requestOptions) { o.description = description }
}

// WithDefaultVariant names the variant served by default
func WithDefaultVariant(name string) RequestOption {
	return func(o *requestOptions) { o.defaultVariant = name }
}

// WithTags tags a new prompt or version
func WithTags(tags map[string]string) RequestOption {
	return func(o *requestOptions) { o.tags = tags }
}

// WithInference binds inference parameters to a new prompt's variant
func WithInference(cfg *catalog.InferenceConfig) RequestOption {
	return func(o *requestOptions) { o.inference = cfg }
}

// WithEncryptionKey encrypts a new prompt with a customer managed KMS key
func WithEncryptionKey(arn string) RequestOption {
	return func(o *requestOptions) { o.encryptionKeyArn = arn }
}

func (m *Manager) requestOptions(opts []RequestOption) requestOptions {
	o := requestOptions{variantName: m.variantName}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
