package reconcile

import "strings"

// unwantedRuntimeSymbols are compiler-support exports dragged in from the
// static runtime libraries. For custom DLLs (and under
// --exclude-unwanted-exports) these must not be admitted as new exports.
var unwantedRuntimeSymbols = []string{
	"__cxa_pure_virtual",
	"__cxa_guard_acquire",
	"__cxa_guard_release",
	"__cxa_guard_abort",
	"__cxa_atexit",
	"__cxa_begin_catch",
	"__cxa_end_catch",
	"__cxa_rethrow",
	"__cxa_throw",
	"__cxa_allocate_exception",
	"__cxa_free_exception",
	"__cxa_call_unexpected",
	"__gxx_personality_v0",
	"__aeabi_unwind_cpp_pr0",
	"__aeabi_unwind_cpp_pr1",
	"__aeabi_unwind_cpp_pr2",
	"__aeabi_idiv",
	"__aeabi_idivmod",
	"__aeabi_uidiv",
	"__aeabi_uidivmod",
	"__aeabi_ldivmod",
	"__aeabi_uldivmod",
	"__aeabi_lmul",
	"__aeabi_llsl",
	"__aeabi_llsr",
	"__aeabi_lasr",
	"__aeabi_memcpy",
	"__aeabi_memcpy4",
	"__aeabi_memcpy8",
	"__aeabi_memmove",
	"__aeabi_memmove4",
	"__aeabi_memmove8",
	"__aeabi_memset",
	"__aeabi_memset4",
	"__aeabi_memset8",
	"__aeabi_memclr",
	"__aeabi_memclr4",
	"__aeabi_memclr8",
	"__aeabi_dadd",
	"__aeabi_dsub",
	"__aeabi_dmul",
	"__aeabi_ddiv",
	"__aeabi_fadd",
	"__aeabi_fsub",
	"__aeabi_fmul",
	"__aeabi_fdiv",
	"__aeabi_d2iz",
	"__aeabi_f2iz",
	"__aeabi_i2d",
	"__aeabi_i2f",
	"__gnu_Unwind_Restore_VFP",
	"__gnu_Unwind_Save_VFP",
	"_Unwind_Resume",
	"_ZdaPv",
	"_ZdlPv",
	"_Znaj",
	"_Znwj",
	"_ZSt9terminatev",
	"_ZSt10unexpectedv",
}

// unwanted reports whether name is one of the runtime-support exports. The
// export name is matched by containment within the table entry, so a
// truncated export still hits its full runtime name.
func unwanted(name string) bool {
	if name == "" {
		return false
	}
	for _, u := range unwantedRuntimeSymbols {
		if strings.Contains(u, name) {
			return true
		}
	}
	return false
}
