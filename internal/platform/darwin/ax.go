//go:build darwin && cgo

// Package darwin binds the accessibility provider to the macOS AX API.
package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation

#include <ApplicationServices/ApplicationServices.h>
#include <stdlib.h>

static AXUIElementRef ax_app_element(pid_t pid) {
	return AXUIElementCreateApplication(pid);
}

static int ax_trusted(void) {
	return AXIsProcessTrusted() ? 1 : 0;
}

// Copies a string-valued attribute; returns NULL when absent or non-string.
static char *ax_copy_string_attr(AXUIElementRef el, const char *name) {
	CFStringRef attr = CFStringCreateWithCString(NULL, name, kCFStringEncodingUTF8);
	CFTypeRef value = NULL;
	AXError err = AXUIElementCopyAttributeValue(el, attr, &value);
	CFRelease(attr);
	if (err != kAXErrorSuccess || value == NULL) {
		return NULL;
	}
	char *out = NULL;
	if (CFGetTypeID(value) == CFStringGetTypeID()) {
		CFStringRef s = (CFStringRef)value;
		CFIndex max = CFStringGetMaximumSizeForEncoding(CFStringGetLength(s), kCFStringEncodingUTF8) + 1;
		out = malloc(max);
		if (out != NULL && !CFStringGetCString(s, out, max, kCFStringEncodingUTF8)) {
			free(out);
			out = NULL;
		}
	}
	CFRelease(value);
	return out;
}

// Fills frame from the AXFrame attribute; returns 1 on success.
static int ax_frame(AXUIElementRef el, double *x, double *y, double *w, double *h) {
	CFStringRef attr = CFStringCreateWithCString(NULL, "AXFrame", kCFStringEncodingUTF8);
	CFTypeRef value = NULL;
	AXError err = AXUIElementCopyAttributeValue(el, attr, &value);
	CFRelease(attr);
	if (err != kAXErrorSuccess || value == NULL) {
		return 0;
	}
	int ok = 0;
	CGRect rect;
	if (AXValueGetType((AXValueRef)value) == kAXValueTypeCGRect &&
	    AXValueGetValue((AXValueRef)value, kAXValueTypeCGRect, &rect)) {
		*x = rect.origin.x;
		*y = rect.origin.y;
		*w = rect.size.width;
		*h = rect.size.height;
		ok = 1;
	}
	CFRelease(value);
	return ok;
}

// Copies child element refs into a malloc'd array; caller frees the array.
// Each element is retained and must be released by the caller's owner.
static long ax_copy_children(AXUIElementRef el, AXUIElementRef **out) {
	CFTypeRef value = NULL;
	AXError err = AXUIElementCopyAttributeValue(el, kAXChildrenAttribute, &value);
	if (err != kAXErrorSuccess || value == NULL) {
		return 0;
	}
	if (CFGetTypeID(value) != CFArrayGetTypeID()) {
		CFRelease(value);
		return 0;
	}
	CFArrayRef arr = (CFArrayRef)value;
	long n = CFArrayGetCount(arr);
	*out = malloc(sizeof(AXUIElementRef) * n);
	for (long i = 0; i < n; i++) {
		AXUIElementRef child = (AXUIElementRef)CFArrayGetValueAtIndex(arr, i);
		CFRetain(child);
		(*out)[i] = child;
	}
	CFRelease(value);
	return n;
}

// Copies supported action names as a NULL-terminated array of C strings.
static long ax_copy_actions(AXUIElementRef el, char ***out) {
	CFArrayRef names = NULL;
	AXError err = AXUIElementCopyActionNames(el, &names);
	if (err != kAXErrorSuccess || names == NULL) {
		return 0;
	}
	long n = CFArrayGetCount(names);
	*out = malloc(sizeof(char *) * n);
	for (long i = 0; i < n; i++) {
		CFStringRef s = (CFStringRef)CFArrayGetValueAtIndex(names, i);
		CFIndex max = CFStringGetMaximumSizeForEncoding(CFStringGetLength(s), kCFStringEncodingUTF8) + 1;
		(*out)[i] = malloc(max);
		if (!CFStringGetCString(s, (*out)[i], max, kCFStringEncodingUTF8)) {
			(*out)[i][0] = '\0';
		}
	}
	CFRelease(names);
	return n;
}

static AXError ax_perform(AXUIElementRef el, const char *name) {
	CFStringRef action = CFStringCreateWithCString(NULL, name, kCFStringEncodingUTF8);
	AXError err = AXUIElementPerformAction(el, action);
	CFRelease(action);
	return err;
}

static AXError ax_set_string_attr(AXUIElementRef el, const char *name, const char *value) {
	CFStringRef attr = CFStringCreateWithCString(NULL, name, kCFStringEncodingUTF8);
	CFStringRef v = CFStringCreateWithCString(NULL, value, kCFStringEncodingUTF8);
	AXError err = AXUIElementSetAttributeValue(el, attr, v);
	CFRelease(v);
	CFRelease(attr);
	return err;
}

static AXError ax_set_bool_attr(AXUIElementRef el, const char *name, int value) {
	CFStringRef attr = CFStringCreateWithCString(NULL, name, kCFStringEncodingUTF8);
	CFBooleanRef v = value ? kCFBooleanTrue : kCFBooleanFalse;
	AXError err = AXUIElementSetAttributeValue(el, attr, v);
	CFRelease(attr);
	return err;
}
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/mj1618/a11y-mcp/internal/platform"
	"github.com/mj1618/a11y-mcp/internal/protocol"
)

// Provider reads the AX tree of one process. Elements are retained native
// handles owned by the registry; IDs are the formatted element pointers,
// which keeps them stable for the lifetime of the underlying element.
type Provider struct {
	pid      int
	root     C.AXUIElementRef
	registry *platform.Registry[C.AXUIElementRef]
}

// New attaches to a process. pid 0 targets the current process, matching
// the embedded-server use case where an app exposes its own tree.
func New(pid int) (*Provider, error) {
	if C.ax_trusted() == 0 {
		return nil, fmt.Errorf("%w: grant access in System Settings > Privacy & Security > Accessibility", platform.ErrPermissionDenied)
	}
	if pid == 0 {
		pid = os.Getpid()
	}
	root := C.ax_app_element(C.pid_t(pid))
	if root == nil {
		return nil, fmt.Errorf("failed to create AX application element for pid %d", pid)
	}
	p := &Provider{
		pid:      pid,
		root:     root,
		registry: platform.NewRegistry[C.AXUIElementRef](),
	}
	p.register(root)
	return p, nil
}

// register stores an element under its pointer-derived ID.
func (p *Provider) register(el C.AXUIElementRef) protocol.NodeID {
	id := protocol.NodeID(fmt.Sprintf("%p", unsafe.Pointer(el)))
	p.registry.PutAs(id, el)
	return id
}

func (p *Provider) GetRoot() (protocol.Node, error) {
	return p.nodeFrom(p.root), nil
}

func (p *Provider) GetNode(id protocol.NodeID) (protocol.Node, error) {
	el, err := p.registry.Get(id)
	if err != nil {
		return protocol.Node{}, err
	}
	return p.nodeFrom(el), nil
}

func (p *Provider) GetChildren(id protocol.NodeID) ([]protocol.Node, error) {
	el, err := p.registry.Get(id)
	if err != nil {
		return nil, err
	}
	var children []protocol.Node
	for _, child := range p.childElements(el) {
		children = append(children, p.nodeFrom(child))
	}
	return children, nil
}

func (p *Provider) PerformAction(id protocol.NodeID, action protocol.Action) error {
	el, err := p.registry.Get(id)
	if err != nil {
		return err
	}

	switch action.Type {
	case protocol.ActionFocus:
		if rc := C.ax_set_bool_attr(el, attrFocused, 1); rc != C.kAXErrorSuccess {
			return axError("focus", rc)
		}
		return nil
	case protocol.ActionSetValue:
		cValue := C.CString(action.Value)
		defer C.free(unsafe.Pointer(cValue))
		if rc := C.ax_set_string_attr(el, attrValue, cValue); rc != C.kAXErrorSuccess {
			return axError("set_value", rc)
		}
		return nil
	case protocol.ActionScroll:
		// AX has no generic scroll action; the nearest equivalents are
		// element-specific (AXScrollToVisible) and not delta-based.
		return fmt.Errorf("scroll is not supported by the AX backend")
	}

	name, err := axActionName(action)
	if err != nil {
		return err
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	if rc := C.ax_perform(el, cName); rc != C.kAXErrorSuccess {
		return axError(action.Type, rc)
	}
	return nil
}

// C attribute names reused across calls.
var (
	attrRole        = C.CString("AXRole")
	attrTitle       = C.CString("AXTitle")
	attrValue       = C.CString("AXValue")
	attrDescription = C.CString("AXDescription")
	attrFocused     = C.CString("AXFocused")
)

// nodeFrom normalizes one AX element, registering it and its children so
// every emitted ID is resolvable afterwards.
func (p *Provider) nodeFrom(el C.AXUIElementRef) protocol.Node {
	node := protocol.Node{
		ID:          p.register(el),
		Role:        p.stringAttr(el, attrRole),
		Name:        p.stringAttr(el, attrTitle),
		Value:       p.stringAttr(el, attrValue),
		Description: p.stringAttr(el, attrDescription),
		Actions:     p.actions(el),
	}
	if node.Role == "" {
		node.Role = "unknown"
	}

	var x, y, w, h C.double
	if C.ax_frame(el, &x, &y, &w, &h) == 1 {
		node.Bounds = &protocol.Rect{
			X: float64(x), Y: float64(y),
			Width: float64(w), Height: float64(h),
		}
	}

	for _, child := range p.childElements(el) {
		node.Children = append(node.Children, p.register(child))
	}
	return node
}

func (p *Provider) stringAttr(el C.AXUIElementRef, attr *C.char) string {
	cs := C.ax_copy_string_attr(el, attr)
	if cs == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(cs))
	return C.GoString(cs)
}

func (p *Provider) childElements(el C.AXUIElementRef) []C.AXUIElementRef {
	var raw *C.AXUIElementRef
	n := C.ax_copy_children(el, &raw)
	if n == 0 || raw == nil {
		return nil
	}
	defer C.free(unsafe.Pointer(raw))
	out := make([]C.AXUIElementRef, 0, int(n))
	refs := unsafe.Slice(raw, int(n))
	out = append(out, refs...)
	return out
}

func (p *Provider) actions(el C.AXUIElementRef) []protocol.Action {
	var raw **C.char
	n := C.ax_copy_actions(el, &raw)
	actions := []protocol.Action{}
	if n == 0 || raw == nil {
		return actions
	}
	defer C.free(unsafe.Pointer(raw))
	names := unsafe.Slice(raw, int(n))
	for _, cs := range names {
		name := C.GoString(cs)
		C.free(unsafe.Pointer(cs))
		actions = append(actions, actionFromAX(name))
	}
	return actions
}

// actionFromAX maps an AX action name onto the protocol taxonomy; anything
// without a direct counterpart is exposed as a custom action.
func actionFromAX(name string) protocol.Action {
	switch name {
	case "AXPress":
		return protocol.Action{Type: protocol.ActionPress}
	case "AXIncrement":
		return protocol.Action{Type: protocol.ActionIncrement}
	case "AXDecrement":
		return protocol.Action{Type: protocol.ActionDecrement}
	case "AXShowMenu":
		return protocol.Action{Type: protocol.ActionContextMenu}
	}
	return protocol.Custom(name)
}

// axActionName maps a protocol action onto its AX action name.
func axActionName(action protocol.Action) (string, error) {
	switch action.Type {
	case protocol.ActionPress:
		return "AXPress", nil
	case protocol.ActionIncrement:
		return "AXIncrement", nil
	case protocol.ActionDecrement:
		return "AXDecrement", nil
	case protocol.ActionContextMenu:
		return "AXShowMenu", nil
	case protocol.ActionCustom:
		return action.Name, nil
	}
	return "", fmt.Errorf("action %s has no AX equivalent", action)
}

func axError(op string, rc C.AXError) error {
	if rc == C.kAXErrorAPIDisabled {
		return fmt.Errorf("%w: %s failed (AX API disabled)", platform.ErrPermissionDenied, op)
	}
	return fmt.Errorf("%s failed with AXError %d", op, int(rc))
}
