package odbc

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"
)

// Driver manager library loader
var (
	managerOnce    sync.Once
	managerLoaded  bool
	managerError   error
	managerPath    string
	managerHandler unsafe.Pointer
)

// Dynamically resolved driver manager entry points
var (
	procAllocHandle   uintptr
	procFreeHandle    uintptr
	procSetEnvAttr    uintptr
	procDriverConnect uintptr
	procDisconnect    uintptr
	procExecDirect    uintptr
	procFetch         uintptr
	procRowCount      uintptr
	procNumResultCols uintptr
	procDescribeCol   uintptr
	procGetData       uintptr
	procGetDiagRec    uintptr
)

// DefaultDriverManager returns the platform ODBC driver manager, loading it
// on first use. The load happens once per process; every later call returns
// the same result.
func DefaultDriverManager() (DriverManager, error) {
	loadDriverManager()
	if !managerLoaded {
		return nil, managerError
	}
	return nativeManager{}, nil
}

// Attempts to load the driver manager library
func loadDriverManager() {
	managerOnce.Do(func() {
		managerPath = findDriverManagerPath()
		if managerPath == "" {
			managerError = errors.New("odbc driver manager library not found")
			return
		}

		handler, err := loadDynamicLibrary(managerPath)
		if err != nil {
			managerError = fmt.Errorf("failed to load driver manager: %v", err)
			return
		}
		managerHandler = handler

		if !loadManagerSymbols() {
			closeLibrary(managerHandler)
			managerError = errors.New("failed to resolve one or more driver manager entry points")
			return
		}

		managerLoaded = true
	})
}

// Find the driver manager library for the current OS. The ODBC_LIBRARY
// environment variable overrides the search.
func findDriverManagerPath() string {
	if p := os.Getenv("ODBC_LIBRARY"); p != "" {
		return p
	}

	switch runtime.GOOS {
	case "windows":
		return "odbc32.dll"
	case "darwin":
		// unixODBC first, iODBC as the fallback shipped with macOS ports
		return locateLibrary([]string{
			"libodbc.2.dylib",
			"libodbc.dylib",
			"libiodbc.2.dylib",
			"libiodbc.dylib",
		})
	default:
		return locateLibrary([]string{
			"libodbc.so.2",
			"libodbc.so.1",
			"libodbc.so",
		})
	}
}

// locateLibrary returns the first candidate present in a conventional
// install location. When no stat matches, the first candidate's bare
// soname is returned anyway so dlopen can consult the loader's own search
// paths (ld cache, LD_LIBRARY_PATH), which cover layouts like /usr/lib64
// that the directory probe does not.
func locateLibrary(candidates []string) string {
	for _, name := range candidates {
		if libraryExists(name) {
			return name
		}
	}
	return candidates[0]
}

// libraryExists checks the conventional driver-manager install locations.
func libraryExists(name string) bool {
	for _, dir := range []string{
		"/usr/lib",
		"/usr/local/lib",
		"/usr/lib/x86_64-linux-gnu",
		"/usr/lib/aarch64-linux-gnu",
		"/opt/homebrew/lib",
	} {
		if _, err := os.Stat(dir + "/" + name); err == nil {
			return true
		}
	}
	return false
}

// Resolve all required entry points from the library
func loadManagerSymbols() bool {
	symbols := []struct {
		name string
		dst  *uintptr
	}{
		{"SQLAllocHandle", &procAllocHandle},
		{"SQLFreeHandle", &procFreeHandle},
		{"SQLSetEnvAttr", &procSetEnvAttr},
		{"SQLDriverConnect", &procDriverConnect},
		{"SQLDisconnect", &procDisconnect},
		{"SQLExecDirect", &procExecDirect},
		{"SQLFetch", &procFetch},
		{"SQLRowCount", &procRowCount},
		{"SQLNumResultCols", &procNumResultCols},
		{"SQLDescribeCol", &procDescribeCol},
		{"SQLGetData", &procGetData},
		{"SQLGetDiagRec", &procGetDiagRec},
	}

	for _, s := range symbols {
		sym, err := getSymbol(managerHandler, s.name)
		if err != nil {
			return false
		}
		*s.dst = uintptr(sym)
	}

	return true
}

// nativeManager implements DriverManager against the loaded platform library.
type nativeManager struct{}

func (nativeManager) AllocHandle(handleType SQLSMALLINT, parent SQLHANDLE) (SQLHANDLE, SQLRETURN) {
	var out SQLHANDLE
	ret := syscallN(procAllocHandle,
		uarg(int64(handleType)),
		uintptr(parent),
		uintptr(unsafe.Pointer(&out)))
	return out, SQLRETURN(int16(ret))
}

func (nativeManager) FreeHandle(handleType SQLSMALLINT, handle SQLHANDLE) SQLRETURN {
	ret := syscallN(procFreeHandle, uarg(int64(handleType)), uintptr(handle))
	return SQLRETURN(int16(ret))
}

func (nativeManager) SetEnvAttr(env SQLHANDLE, attr SQLINTEGER, value SQLINTEGER) SQLRETURN {
	// Integer-valued attributes travel in the pointer argument itself.
	ret := syscallN(procSetEnvAttr,
		uintptr(env),
		uarg(int64(attr)),
		uarg(int64(value)),
		0)
	return SQLRETURN(int16(ret))
}

func (nativeManager) DriverConnect(dbc SQLHANDLE, connStr string) SQLRETURN {
	buf := append([]byte(connStr), 0)
	ret := syscallN(procDriverConnect,
		uintptr(dbc),
		0, // no window handle
		uintptr(unsafe.Pointer(&buf[0])),
		uarg(int64(SQL_NTS)),
		0, 0, 0, // no out-connection-string
		uarg(int64(SQL_DRIVER_NOPROMPT)))
	runtime.KeepAlive(buf)
	return SQLRETURN(int16(ret))
}

func (nativeManager) Disconnect(dbc SQLHANDLE) SQLRETURN {
	ret := syscallN(procDisconnect, uintptr(dbc))
	return SQLRETURN(int16(ret))
}

func (nativeManager) ExecDirect(stmt SQLHANDLE, query string) SQLRETURN {
	buf := append([]byte(query), 0)
	ret := syscallN(procExecDirect,
		uintptr(stmt),
		uintptr(unsafe.Pointer(&buf[0])),
		uarg(int64(SQL_NTS)))
	runtime.KeepAlive(buf)
	return SQLRETURN(int16(ret))
}

func (nativeManager) Fetch(stmt SQLHANDLE) SQLRETURN {
	ret := syscallN(procFetch, uintptr(stmt))
	return SQLRETURN(int16(ret))
}

func (nativeManager) RowCount(stmt SQLHANDLE) (SQLLEN, SQLRETURN) {
	var count SQLLEN
	ret := syscallN(procRowCount, uintptr(stmt), uintptr(unsafe.Pointer(&count)))
	return count, SQLRETURN(int16(ret))
}

func (nativeManager) NumResultCols(stmt SQLHANDLE) (SQLSMALLINT, SQLRETURN) {
	var cols SQLSMALLINT
	ret := syscallN(procNumResultCols, uintptr(stmt), uintptr(unsafe.Pointer(&cols)))
	return cols, SQLRETURN(int16(ret))
}

func (nativeManager) DescribeCol(stmt SQLHANDLE, column SQLUSMALLINT) (string, SQLSMALLINT, SQLRETURN) {
	nameBuf := make([]byte, 256)
	var nameLen, dataType, decimalDigits, nullable SQLSMALLINT
	var columnSize SQLULEN

	ret := syscallN(procDescribeCol,
		uintptr(stmt),
		uarg(int64(column)),
		uintptr(unsafe.Pointer(&nameBuf[0])),
		uarg(int64(len(nameBuf))),
		uintptr(unsafe.Pointer(&nameLen)),
		uintptr(unsafe.Pointer(&dataType)),
		uintptr(unsafe.Pointer(&columnSize)),
		uintptr(unsafe.Pointer(&decimalDigits)),
		uintptr(unsafe.Pointer(&nullable)))
	runtime.KeepAlive(nameBuf)

	rc := SQLRETURN(int16(ret))
	if !succeeded(rc) {
		return "", 0, rc
	}

	n := int(nameLen)
	if n > len(nameBuf) {
		n = len(nameBuf)
	}
	return string(nameBuf[:n]), dataType, rc
}

func (nativeManager) GetData(stmt SQLHANDLE, column SQLUSMALLINT, targetType SQLSMALLINT, buf []byte) (SQLLEN, SQLRETURN) {
	var indicator SQLLEN
	ret := syscallN(procGetData,
		uintptr(stmt),
		uarg(int64(column)),
		uarg(int64(targetType)),
		uintptr(unsafe.Pointer(&buf[0])),
		uarg(int64(len(buf))),
		uintptr(unsafe.Pointer(&indicator)))
	runtime.KeepAlive(buf)
	return indicator, SQLRETURN(int16(ret))
}

func (nativeManager) GetDiagRec(handleType SQLSMALLINT, handle SQLHANDLE) (*DiagRecord, SQLRETURN) {
	stateBuf := make([]byte, 6)
	msgBuf := make([]byte, SQL_MAX_MESSAGE_LENGTH)
	var native SQLINTEGER
	var textLen SQLSMALLINT

	ret := syscallN(procGetDiagRec,
		uarg(int64(handleType)),
		uintptr(handle),
		1, // first record
		uintptr(unsafe.Pointer(&stateBuf[0])),
		uintptr(unsafe.Pointer(&native)),
		uintptr(unsafe.Pointer(&msgBuf[0])),
		uarg(int64(len(msgBuf))),
		uintptr(unsafe.Pointer(&textLen)))
	runtime.KeepAlive(stateBuf)
	runtime.KeepAlive(msgBuf)

	rc := SQLRETURN(int16(ret))
	if !succeeded(rc) {
		return nil, rc
	}

	n := int(textLen)
	if n > len(msgBuf) {
		n = len(msgBuf)
	}
	return &DiagRecord{
		State:   string(stateBuf[:5]),
		Native:  int32(native),
		Message: string(msgBuf[:n]),
	}, rc
}

// uarg widens a possibly negative integer argument for the C ABI. The
// callee reads only the low-order bits it declares.
func uarg(v int64) uintptr {
	return uintptr(v)
}
