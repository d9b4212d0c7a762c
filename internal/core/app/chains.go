package app

import (
	"fmt"

	"propinfo/internal/core/config"
	"propinfo/internal/core/errors"
	"propinfo/internal/core/propertyinfo"
)

// BuildExtractor assembles an aggregator from named extractors. Every chain
// keeps the order given in chains; a name that is missing from extractors or
// does not implement the chain's capability is a validation error.
func BuildExtractor(chains config.Chains, extractors map[string]any) (*propertyinfo.Extractor, error) {
	list, err := chainOf[propertyinfo.ListExtractor](config.ChainList, chains.List, extractors)
	if err != nil {
		return nil, err
	}
	types, err := chainOf[propertyinfo.TypeExtractor](config.ChainType, chains.Type, extractors)
	if err != nil {
		return nil, err
	}
	descriptions, err := chainOf[propertyinfo.DescriptionExtractor](config.ChainDescription, chains.Description, extractors)
	if err != nil {
		return nil, err
	}
	access, err := chainOf[propertyinfo.AccessExtractor](config.ChainAccess, chains.Access, extractors)
	if err != nil {
		return nil, err
	}
	initializable, err := chainOf[propertyinfo.InitializableExtractor](config.ChainInitializable, chains.Initializable, extractors)
	if err != nil {
		return nil, err
	}
	return propertyinfo.NewExtractor(list, types, descriptions, access, initializable), nil
}

func chainOf[E any](chain string, names []string, extractors map[string]any) ([]E, error) {
	out := make([]E, 0, len(names))
	for _, name := range names {
		candidate, ok := extractors[name]
		if !ok {
			return nil, errors.AddContext(
				errors.New(errors.CodeValidationError, fmt.Sprintf("unknown extractor %q in %s chain", name, chain)),
				errors.CtxOperation, chain,
			)
		}
		e, ok := candidate.(E)
		if !ok {
			return nil, errors.AddContext(
				errors.New(errors.CodeValidationError, fmt.Sprintf("extractor %q cannot serve the %s chain", name, chain)),
				errors.CtxOperation, chain,
			)
		}
		out = append(out, e)
	}
	return out, nil
}
