/*
Copyright 2025 The nvvk Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package nvvk

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"goarrg.com/debug"
)

// DriverIdentityPath is where the kernel module reports the proprietary
// driver's identity. Overridable for containers and tests.
var DriverIdentityPath = "/proc/driver/nvidia/version"

// RecommendedDriverVersion is the oldest driver carrying the full
// low-latency-2 + optical-flow surface this library targets.
var RecommendedDriverVersion = DriverVersion{Major: 590, Minor: 48, Patch: 1}

type DriverVersion struct {
	Major uint32
	Minor uint32
	Patch uint32
}

func (v DriverVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 ordering v against o.
func (v DriverVersion) Compare(o DriverVersion) int {
	switch {
	case v.Major != o.Major:
		if v.Major < o.Major {
			return -1
		}
		return 1
	case v.Minor != o.Minor:
		if v.Minor < o.Minor {
			return -1
		}
		return 1
	case v.Patch != o.Patch:
		if v.Patch < o.Patch {
			return -1
		}
		return 1
	}
	return 0
}

func (v DriverVersion) MeetsRecommended() bool {
	return v.Compare(RecommendedDriverVersion) >= 0
}

var driverVersionRe = regexp.MustCompile(`\b(\d{2,4})\.(\d{1,3})(?:\.(\d{1,3}))?`)

// ParseDriverVersion extracts the first version triple from a driver
// identity string, e.g. the first line of /proc/driver/nvidia/version.
func ParseDriverVersion(identity string) (DriverVersion, error) {
	line, _, _ := strings.Cut(identity, "\n")
	m := driverVersionRe.FindStringSubmatch(line)
	if m == nil {
		return DriverVersion{}, debug.ErrorWrapf(ErrParse, "no version triple in %q", line)
	}

	var v DriverVersion
	major, _ := strconv.ParseUint(m[1], 10, 32)
	minor, _ := strconv.ParseUint(m[2], 10, 32)
	v.Major = uint32(major)
	v.Minor = uint32(minor)
	if m[3] != "" {
		patch, _ := strconv.ParseUint(m[3], 10, 32)
		v.Patch = uint32(patch)
	}
	return v, nil
}

// DetectDriverVersion reads DriverIdentityPath. ok is false when the file
// is absent or malformed; that is "version unknown", not an error.
func DetectDriverVersion() (v DriverVersion, ok bool) {
	data, err := os.ReadFile(DriverIdentityPath)
	if err != nil {
		logger.VPrintf("driver identity unavailable: %s", err)
		return DriverVersion{}, false
	}
	v, err = ParseDriverVersion(string(data))
	if err != nil {
		logger.WPrintf("driver identity unreadable: %s", err)
		return DriverVersion{}, false
	}
	return v, true
}

// IsNvidiaGPU reports whether the proprietary NVIDIA kernel module is
// loaded.
func IsNvidiaGPU() bool {
	_, err := os.Stat(DriverIdentityPath)
	return err == nil
}
