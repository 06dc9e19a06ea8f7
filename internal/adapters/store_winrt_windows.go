//go:build windows

package adapters

import (
	"context"
	"sync"
	"unsafe"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-ole/go-ole"
	"github.com/rs/zerolog/log"
	"github.com/scjalliance/comshim"

	"store-upgrader/internal/apartment"
	"store-upgrader/internal/ports"
	"store-upgrader/internal/types"
)

const storeContextClass = "Windows.Services.Store.StoreContext"

const (
	slotStoreContextStaticsGetDefault = 6

	slotStoreContextGetStoreProductForCurrentApp                 = 12
	slotStoreContextGetAppAndOptionalStorePackageUpdates         = 23
	slotStoreContextRequestDownloadAndInstallStorePackageUpdates = 25

	slotStorePackageUpdatePackage   = 6
	slotStorePackageUpdateMandatory = 7

	slotPackageID = 6

	slotPackageIDVersion    = 7
	slotPackageIDFamilyName = 13

	slotStoreProductResultProduct = 6

	slotStoreProductStoreID = 6
	slotStoreProductTitle   = 8
	slotStoreProductLinkURI = 19

	slotURIRawURI = 16

	slotStorePackageUpdateResultOverallState = 6

	slotInitializeWithWindowInitialize = 3
)

var (
	iidIStoreContextStatics = ole.NewGUID("{9C06EE5F-15C0-4E72-9330-D6191CEBD19C}")
	iidIPackage             = ole.NewGUID("{163C792F-BD75-413C-BF23-B1FE7B95D825}")
	iidIUriRuntimeClass     = ole.NewGUID("{9E365E57-48B2-4160-956F-C7385120BBFC}")

	iidIIterableStorePackageUpdate = parameterizedIID(
		"pinterface({faa585ea-6214-4217-afda-7f46de5869b3};" +
			"rc(Windows.Services.Store.StorePackageUpdate;{140fa150-3cbf-4a35-b91f-48271c31b072}))")
)

// WinRTStoreAdapter talks to Windows.Services.Store. Listing and product
// lookups run in the process multithreaded apartment; the install request
// opens a consent dialog and runs on a dedicated single-threaded apartment.
type WinRTStoreAdapter struct {
	options    WinRTOptions
	dispatcher *apartment.Dispatcher
	closeOnce  sync.Once
}

func NewWinRTStoreAdapter(options WinRTOptions) (*WinRTStoreAdapter, error) {
	comshim.Add(1)
	dispatcher, err := apartment.Start("winrt-ui", func() (func(), error) {
		if err := ole.RoInitialize(0); err != nil {
			return nil, err
		}
		return ole.CoUninitialize, nil
	})
	if err != nil {
		comshim.Done()
		return nil, err
	}
	return &WinRTStoreAdapter{options: options, dispatcher: dispatcher}, nil
}

func (a *WinRTStoreAdapter) Close() {
	a.closeOnce.Do(func() {
		a.dispatcher.Close()
		comshim.Done()
	})
}

// winrtUpdateSet is the native handle carried by an UpdateBatch. mu is
// held while an install uses the objects, so release waits for it.
type winrtUpdateSet struct {
	mu      sync.Mutex
	context winrtObject
	updates winrtObject
}

func (s *winrtUpdateSet) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates.release()
	s.context.release()
	s.updates, s.context = 0, 0
}

func (a *WinRTStoreAdapter) defaultContext() (winrtObject, error) {
	factory, err := ole.RoGetActivationFactory(storeContextClass, iidIStoreContextStatics)
	if err != nil {
		return 0, platformErrorFrom(err)
	}
	statics := winrtObject(unsafe.Pointer(factory))
	defer statics.release()
	return statics.getObject(slotStoreContextStaticsGetDefault)
}

func (a *WinRTStoreAdapter) ListUpdates(ctx context.Context) (types.UpdateBatch, error) {
	storeContext, err := a.defaultContext()
	if err != nil {
		return types.UpdateBatch{}, err
	}
	op, err := storeContext.getObject(slotStoreContextGetAppAndOptionalStorePackageUpdates)
	if err != nil {
		storeContext.release()
		return types.UpdateBatch{}, err
	}
	view, err := awaitResult(ctx, op, slotAsyncOperationGetResults, a.options.pollInterval(), false)
	if err != nil {
		storeContext.release()
		return types.UpdateBatch{}, err
	}
	set := &winrtUpdateSet{context: storeContext, updates: view}

	updates, err := readPackageUpdates(view)
	if err != nil {
		set.release()
		return types.UpdateBatch{}, err
	}
	log.Debug().Int("count", len(updates)).Msg("store package updates listed")
	return types.NewUpdateBatch(updates, set, set.release), nil
}

func readPackageUpdates(view winrtObject) ([]types.PackageUpdate, error) {
	size, err := view.getUint32(slotVectorViewSize)
	if err != nil {
		return nil, err
	}
	updates := make([]types.PackageUpdate, 0, size)
	for i := uint32(0); i < size; i++ {
		var item winrtObject
		if err := view.call(slotVectorViewGetAt, uintptr(i), uintptr(unsafe.Pointer(&item))); err != nil {
			return nil, err
		}
		update, err := readPackageUpdate(item)
		item.release()
		if err != nil {
			return nil, err
		}
		updates = append(updates, update)
	}
	return updates, nil
}

func readPackageUpdate(item winrtObject) (types.PackageUpdate, error) {
	mandatory, err := item.getBool(slotStorePackageUpdateMandatory)
	if err != nil {
		return types.PackageUpdate{}, err
	}
	pkg, err := item.getObject(slotStorePackageUpdatePackage)
	if err != nil {
		return types.PackageUpdate{}, err
	}
	defer pkg.release()
	pkgIface, err := pkg.queryInterface(iidIPackage)
	if err != nil {
		return types.PackageUpdate{}, err
	}
	defer pkgIface.release()
	id, err := pkgIface.getObject(slotPackageID)
	if err != nil {
		return types.PackageUpdate{}, err
	}
	defer id.release()

	var version types.PackageVersion
	if err := id.call(slotPackageIDVersion, uintptr(unsafe.Pointer(&version))); err != nil {
		return types.PackageUpdate{}, err
	}
	family, err := id.getString(slotPackageIDFamilyName)
	if err != nil {
		return types.PackageUpdate{}, err
	}
	return types.PackageUpdate{PackageFamilyName: family, Version: version, Mandatory: mandatory}, nil
}

func (a *WinRTStoreAdapter) InstallUpdates(ctx context.Context, batch types.UpdateBatch) (types.InstallResult, error) {
	set, ok := batch.Native.(*winrtUpdateSet)
	if !ok || set == nil {
		return types.InstallResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("update batch was not listed by the winrt store adapter")
	}
	return apartment.Call(ctx, a.dispatcher, func() (types.InstallResult, error) {
		set.mu.Lock()
		defer set.mu.Unlock()
		if set.context == 0 {
			return types.InstallResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("update batch was already released")
		}
		if a.options.OwnerWindow != 0 {
			if err := initializeWithWindow(set.context, a.options.OwnerWindow); err != nil {
				log.Warn().Err(err).Msg("could not parent store dialog to owner window")
			}
		}
		iterable, err := set.updates.queryInterface(iidIIterableStorePackageUpdate)
		if err != nil {
			return types.InstallResult{}, err
		}
		defer iterable.release()

		var op winrtObject
		if err := set.context.call(slotStoreContextRequestDownloadAndInstallStorePackageUpdates,
			uintptr(iterable), uintptr(unsafe.Pointer(&op))); err != nil {
			return types.InstallResult{}, err
		}
		result, err := awaitResult(ctx, op, slotAsyncOperationWithProgressGetResults, a.options.pollInterval(), true)
		if err != nil {
			return types.InstallResult{}, err
		}
		defer result.release()
		state, err := result.getUint32(slotStorePackageUpdateResultOverallState)
		if err != nil {
			return types.InstallResult{}, err
		}
		return types.InstallResult{OverallState: types.UpdateState(state)}, nil
	})
}

func initializeWithWindow(storeContext winrtObject, hwnd uintptr) error {
	initializer, err := storeContext.queryInterface(iidIInitializeWithWindow)
	if err != nil {
		return err
	}
	defer initializer.release()
	return initializer.call(slotInitializeWithWindowInitialize, hwnd)
}

func (a *WinRTStoreAdapter) GetProductInfo(ctx context.Context) (types.ProductInfo, error) {
	storeContext, err := a.defaultContext()
	if err != nil {
		return types.ProductInfo{}, err
	}
	defer storeContext.release()
	op, err := storeContext.getObject(slotStoreContextGetStoreProductForCurrentApp)
	if err != nil {
		return types.ProductInfo{}, err
	}
	result, err := awaitResult(ctx, op, slotAsyncOperationGetResults, a.options.pollInterval(), false)
	if err != nil {
		return types.ProductInfo{}, err
	}
	defer result.release()

	product, err := result.getObject(slotStoreProductResultProduct)
	if err != nil {
		return types.ProductInfo{}, err
	}
	if product == 0 {
		log.Debug().Msg("store returned no product for the current app")
		return types.ProductInfo{}, nil
	}
	defer product.release()

	var info types.ProductInfo
	if info.StoreID, err = product.getString(slotStoreProductStoreID); err != nil {
		return types.ProductInfo{}, err
	}
	if info.Title, err = product.getString(slotStoreProductTitle); err != nil {
		return types.ProductInfo{}, err
	}
	link, err := product.getObject(slotStoreProductLinkURI)
	if err != nil {
		return types.ProductInfo{}, err
	}
	if link != 0 {
		defer link.release()
		uri, err := link.queryInterface(iidIUriRuntimeClass)
		if err != nil {
			return types.ProductInfo{}, err
		}
		defer uri.release()
		if info.LinkURI, err = uri.getString(slotURIRawURI); err != nil {
			return types.ProductInfo{}, err
		}
	}
	return info, nil
}

func platformErrorFrom(err error) error {
	if oleErr, ok := err.(*ole.OleError); ok {
		return platformError(uint32(oleErr.Code()))
	}
	return err
}

var _ ports.UpdateServicePort = (*WinRTStoreAdapter)(nil)
