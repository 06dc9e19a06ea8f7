//go:build windows

package adapters

import (
	"context"
	"encoding/binary"
	"strings"
	"syscall"
	"time"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/google/uuid"
	"golang.org/x/sys/windows"

	"store-upgrader/internal/shared"
	"store-upgrader/internal/types"
)

// vtable slots shared by every WinRT interface
const (
	slotQueryInterface = 0
	slotRelease        = 2
)

const (
	asyncStatusStarted   = 0
	asyncStatusCompleted = 1
	asyncStatusCanceled  = 2
	asyncStatusError     = 3

	slotAsyncInfoStatus    = 7
	slotAsyncInfoErrorCode = 8
	slotAsyncInfoCancel    = 9

	slotAsyncOperationGetResults             = 8
	slotAsyncOperationWithProgressGetResults = 10

	slotVectorViewGetAt = 6
	slotVectorViewSize  = 7
)

const hresultCanceled = 0x800704C7

var (
	iidIAsyncInfo            = ole.NewGUID("{00000036-0000-0000-C000-000000000046}")
	iidIInitializeWithWindow = ole.NewGUID("{3E68D4BD-7135-4D10-8018-9FB6D9F33FA1}")
)

// winrtPinterfaceNamespace is the namespace WinRT hashes parameterized
// interface signatures under.
var winrtPinterfaceNamespace = uuid.MustParse("11f47ad5-7b73-42c0-abae-878b1e16adee")

// parameterizedIID derives the IID of a generic interface instance from
// its type signature.
func parameterizedIID(signature string) *ole.GUID {
	id := uuid.NewSHA1(winrtPinterfaceNamespace, []byte(signature))
	guid := &ole.GUID{
		Data1: binary.BigEndian.Uint32(id[0:4]),
		Data2: binary.BigEndian.Uint16(id[4:6]),
		Data3: binary.BigEndian.Uint16(id[6:8]),
	}
	copy(guid.Data4[:], id[8:16])
	return guid
}

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procPeekMessageW     = user32.NewProc("PeekMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessageW = user32.NewProc("DispatchMessageW")
)

type winMsg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	ptX     int32
	ptY     int32
	private uint32
}

const pmRemove = 0x0001

// pumpMessages drains the calling thread's message queue so dialogs owned
// by an STA thread stay responsive.
func pumpMessages() {
	var msg winMsg
	for {
		rc, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, pmRemove)
		if rc == 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

// winrtObject is a raw interface pointer.
type winrtObject uintptr

func (o winrtObject) method(slot uintptr) uintptr {
	vtbl := *(*uintptr)(unsafe.Pointer(o))
	return *(*uintptr)(unsafe.Pointer(vtbl + slot*unsafe.Sizeof(uintptr(0))))
}

func (o winrtObject) call(slot uintptr, args ...uintptr) error {
	hr, _, _ := syscall.SyscallN(o.method(slot), append([]uintptr{uintptr(o)}, args...)...)
	if int32(hr) < 0 {
		return platformError(uint32(hr))
	}
	return nil
}

func (o winrtObject) release() {
	if o != 0 {
		syscall.SyscallN(o.method(slotRelease), uintptr(o))
	}
}

func (o winrtObject) queryInterface(iid *ole.GUID) (winrtObject, error) {
	var out winrtObject
	if err := o.call(slotQueryInterface, uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&out))); err != nil {
		return 0, err
	}
	return out, nil
}

func (o winrtObject) getObject(slot uintptr) (winrtObject, error) {
	var out winrtObject
	if err := o.call(slot, uintptr(unsafe.Pointer(&out))); err != nil {
		return 0, err
	}
	return out, nil
}

func (o winrtObject) getString(slot uintptr) (string, error) {
	var h ole.HString
	if err := o.call(slot, uintptr(unsafe.Pointer(&h))); err != nil {
		return "", err
	}
	if h == 0 {
		return "", nil
	}
	defer ole.DeleteHString(h)
	return h.String(), nil
}

func (o winrtObject) getUint32(slot uintptr) (uint32, error) {
	var out uint32
	if err := o.call(slot, uintptr(unsafe.Pointer(&out))); err != nil {
		return 0, err
	}
	return out, nil
}

func (o winrtObject) getBool(slot uintptr) (bool, error) {
	var out byte
	if err := o.call(slot, uintptr(unsafe.Pointer(&out))); err != nil {
		return false, err
	}
	return out != 0, nil
}

func platformError(hr uint32) *types.PlatformError {
	message := strings.TrimSpace(ole.NewError(uintptr(hr)).Error())
	if message == "" {
		message = shared.HResultString(hr)
	}
	return &types.PlatformError{HResult: hr, Message: message}
}

// awaitAsync polls op until it leaves the started state. With pump set the
// calling thread's messages are dispatched between polls.
func awaitAsync(ctx context.Context, op winrtObject, interval time.Duration, pump bool) error {
	info, err := op.queryInterface(iidIAsyncInfo)
	if err != nil {
		return err
	}
	defer info.release()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		status, err := info.getUint32(slotAsyncInfoStatus)
		if err != nil {
			return err
		}
		switch status {
		case asyncStatusCompleted:
			return nil
		case asyncStatusCanceled:
			return &types.PlatformError{HResult: hresultCanceled, Message: "The operation was canceled."}
		case asyncStatusError:
			code, err := info.getUint32(slotAsyncInfoErrorCode)
			if err != nil {
				return err
			}
			return platformError(code)
		}
		if pump {
			pumpMessages()
		}
		select {
		case <-ctx.Done():
			_ = info.call(slotAsyncInfoCancel)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// awaitResult waits for op and fetches its result object. op is released.
func awaitResult(ctx context.Context, op winrtObject, getResultsSlot uintptr, interval time.Duration, pump bool) (winrtObject, error) {
	defer op.release()
	if err := awaitAsync(ctx, op, interval, pump); err != nil {
		return 0, err
	}
	return op.getObject(getResultsSlot)
}
