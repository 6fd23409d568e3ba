// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/models"
)

type appInfoService struct {
	buildInfo models.AppBuildInfo

	logger *logger.Logger
}

func NewAppInfoService(buildInfo models.AppBuildInfo, logger *logger.Logger) (AppInfoService, error) {
	if buildInfo.BuildVersion() == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		buildInfo: buildInfo,
		logger:    logger,
	}, nil
}

// GetAppVersion returns "version (commit, date)", leaving out unknown parts.
func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	version := s.buildInfo.BuildVersion()
	commit, date := s.buildInfo.BuildCommit(), s.buildInfo.BuildDate()

	switch {
	case commit != "" && date != "":
		return fmt.Sprintf("%s (%s, %s)", version, commit, date)
	case commit != "":
		return fmt.Sprintf("%s (%s)", version, commit)
	case date != "":
		return fmt.Sprintf("%s (%s)", version, date)
	}
	return version
}
