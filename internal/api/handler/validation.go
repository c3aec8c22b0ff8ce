package handler

import (
	"regexp"

	"github.com/refinery-hq/refinery/pkg/apierr"
	"github.com/refinery-hq/refinery/pkg/models"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

func validateSlug(slug string) *apierr.Error {
	if slug == "" {
		return apierr.SlugRequired()
	}
	if !slugRegex.MatchString(slug) {
		return apierr.SlugInvalid()
	}
	return nil
}

func validateName(name string) *apierr.Error {
	if name == "" {
		return apierr.NameRequired()
	}
	if len(name) > 255 {
		return apierr.NameTooLong()
	}
	return nil
}

func validateOutputFormat(format models.OutputFormat) *apierr.Error {
	if !format.Valid() {
		return apierr.UnsupportedOutputFormat(string(format))
	}
	return nil
}

func validateDateRange(dr *models.DateRange) *apierr.Error {
	if dr == nil || dr.Start == "" || dr.End == "" {
		return nil
	}
	if dr.End < dr.Start {
		return apierr.InvalidDateRange()
	}
	return nil
}
