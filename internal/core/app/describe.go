package app

import (
	"context"

	"propinfo/internal/core/errors"
	"propinfo/internal/core/propertyinfo"
	"propinfo/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
)

// ClassReport holds the answers of every chain for each property of a class.
type ClassReport struct {
	Class      string           `json:"class"`
	Properties []PropertyReport `json:"properties"`
}

// PropertyReport leaves a field nil or empty when no extractor had an
// opinion.
type PropertyReport struct {
	Name             string              `json:"name"`
	Types            []propertyinfo.Type `json:"types,omitempty"`
	TypeText         string              `json:"type,omitempty"`
	ShortDescription string              `json:"short_description,omitempty"`
	LongDescription  string              `json:"long_description,omitempty"`
	Readable         *bool               `json:"readable,omitempty"`
	Writable         *bool               `json:"writable,omitempty"`
	Initializable    *bool               `json:"initializable,omitempty"`
}

// Describe runs all seven queries for class. A class no list extractor knows
// is a NOT_FOUND error.
func (a *App) Describe(ctx context.Context, class string, hints propertyinfo.Context) (*ClassReport, error) {
	_, span := observability.Tracer().Start(ctx, "app.Describe")
	defer span.End()
	span.SetAttributes(attribute.String("class", class))

	info := a.Info()
	names, ok, err := info.Properties(class, hints)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !ok {
		return nil, errors.AddContext(errors.New(errors.CodeNotFound, "class not found"), errors.CtxClass, class)
	}

	report := &ClassReport{Class: class, Properties: make([]PropertyReport, 0, len(names))}
	for _, name := range names {
		prop, err := describeProperty(info, class, name, hints)
		if err != nil {
			span.RecordError(err)
			return nil, errors.AddContext(err, errors.CtxProperty, name)
		}
		report.Properties = append(report.Properties, prop)
	}
	span.SetAttributes(attribute.Int("properties", len(report.Properties)))
	return report, nil
}

// DescribeProperty runs the six property queries for one property.
func (a *App) DescribeProperty(class, property string, hints propertyinfo.Context) (PropertyReport, error) {
	return describeProperty(a.Info(), class, property, hints)
}

func describeProperty(info propertyinfo.PropertyInfo, class, property string, hints propertyinfo.Context) (PropertyReport, error) {
	report := PropertyReport{Name: property}

	types, ok, err := info.Types(class, property, hints)
	if err != nil {
		return report, err
	}
	if ok {
		report.Types = types
		report.TypeText = propertyinfo.FormatTypes(types)
	}

	if report.ShortDescription, _, err = info.ShortDescription(class, property, hints); err != nil {
		return report, err
	}
	if report.LongDescription, _, err = info.LongDescription(class, property, hints); err != nil {
		return report, err
	}

	if report.Readable, err = tristate(info.IsReadable(class, property, hints)); err != nil {
		return report, err
	}
	if report.Writable, err = tristate(info.IsWritable(class, property, hints)); err != nil {
		return report, err
	}
	if report.Initializable, err = tristate(info.IsInitializable(class, property, hints)); err != nil {
		return report, err
	}
	return report, nil
}

func tristate(value, ok bool, err error) (*bool, error) {
	if err != nil || !ok {
		return nil, err
	}
	return &value, nil
}
