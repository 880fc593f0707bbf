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
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"goarrg.com/debug"

	"github.com/GhostKellz/nvvk/internal/vk"
)

var vulkanRuntimeNames = []string{"libvulkan.so.1", "libvulkan.so"}

// Loader owns a handle to the Vulkan runtime shared object and the global
// vkGetInstanceProcAddr entry point. Hosts that already have their own
// loader never need one; it exists for the probe tool and for layer-style
// deployments that bootstrap themselves.
type Loader struct {
	noCopy              noCopy
	handle              uintptr
	getInstanceProcAddr vk.Proc
}

// OpenLoader dlopens the Vulkan runtime and resolves vkGetInstanceProcAddr.
func OpenLoader() (*Loader, error) {
	var handle uintptr
	var err error
	for _, name := range vulkanRuntimeNames {
		handle, err = purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_LOCAL)
		if err == nil {
			break
		}
	}
	if handle == 0 {
		return nil, debug.ErrorWrapf(ErrLoader, "dlopen: %s", err)
	}

	gipa, err := purego.Dlsym(handle, "vkGetInstanceProcAddr")
	if err != nil || gipa == 0 {
		purego.Dlclose(handle)
		return nil, debug.ErrorWrapf(ErrFunctionNotFound, "vkGetInstanceProcAddr")
	}

	l := &Loader{handle: handle, getInstanceProcAddr: gipa}
	l.noCopy.init()
	logger.IPrintf("opened vulkan runtime, vkGetInstanceProcAddr=%s", toHex(gipa))
	return l, nil
}

// GetInstanceProc resolves name through vkGetInstanceProcAddr. A zero
// instance resolves the global entry-point set. Returns 0 when absent.
func (l *Loader) GetInstanceProc(instance vk.Instance, name string) vk.Proc {
	l.noCopy.check()
	cName := append([]byte(name), 0)
	proc, _, _ := purego.SyscallN(l.getInstanceProcAddr,
		uintptr(instance), uintptr(unsafe.Pointer(&cName[0])))
	runtime.KeepAlive(cName)
	return proc
}

func (l *Loader) Close() {
	l.noCopy.check()
	purego.Dlclose(l.handle)
	l.handle = 0
	l.noCopy.close()
}
