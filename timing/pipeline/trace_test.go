package pipeline_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexlab/apexsim/emu"
	"github.com/apexlab/apexsim/loader"
	"github.com/apexlab/apexsim/timing/pipeline"
)

var _ = Describe("Tracer", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		buf     *bytes.Buffer
	)

	BeforeEach(func() {
		regFile = emu.NewRegFile()
		memory = emu.NewMemory(emu.DefaultMemoryWords)
		buf = &bytes.Buffer{}
	})

	runTraced := func(source string, display bool) *pipeline.Tracer {
		code, err := loader.LoadString(source)
		Expect(err).NotTo(HaveOccurred())

		tracer := pipeline.NewTracer(buf, display)
		pipe := pipeline.NewPipeline(code, regFile, memory, pipeline.WithTracer(tracer))
		Expect(pipe.Run()).To(Succeed())
		return tracer
	}

	Describe("display mode", func() {
		It("should print the first cycle block exactly", func() {
			runTraced("MOVC 1 0 0 5\nHALT 0 0 0 0\n", true)

			want := "--------------------------------\n" +
				"Clock Cycle #: 1\n" +
				"--------------------------------\n" +
				"Writeback      : pc(0) \n" +
				"Memory         : pc(0) \n" +
				"Execute        : pc(0) \n" +
				"Decode/RF      : pc(0) \n" +
				"Fetch          : pc(4000) MOVC,R1,#5 \n"
			Expect(buf.String()).To(HavePrefix(want))
		})

		It("should show the instruction walking down the stages", func() {
			runTraced("MOVC 1 0 0 5\nHALT 0 0 0 0\n", true)

			out := buf.String()
			Expect(out).To(ContainSubstring("Decode/RF      : pc(4000) MOVC,R1,#5 \n"))
			Expect(out).To(ContainSubstring("Execute        : pc(4000) MOVC,R1,#5 \n"))
			Expect(out).To(ContainSubstring("Memory         : pc(4000) MOVC,R1,#5 \n"))
			Expect(out).To(ContainSubstring("Writeback      : pc(4000) MOVC,R1,#5 \n"))
			Expect(out).To(ContainSubstring("Writeback      : pc(4004) HALT,#0 \n"))
		})

		It("should print one header per cycle", func() {
			runTraced("HALT 0 0 0 0\n", true)

			Expect(strings.Count(buf.String(), "Clock Cycle #:")).To(Equal(5))
		})
	})

	Describe("simulate mode", func() {
		It("should print no per-cycle lines", func() {
			runTraced("MOVC 1 0 0 5\nHALT 0 0 0 0\n", false)

			Expect(buf.String()).To(BeEmpty())
		})
	})

	Describe("Complete", func() {
		It("should print the completion banner", func() {
			tracer := runTraced("HALT 0 0 0 0\n", false)
			tracer.Complete()

			Expect(buf.String()).To(Equal("(apex) >> Simulation Complete"))
		})
	})

	Describe("DumpState", func() {
		It("should print the architectural file and memory dumps", func() {
			tracer := runTraced("MOVC 1 0 0 5\nHALT 0 0 0 0\n", false)
			tracer.DumpState(regFile, memory)

			out := buf.String()
			Expect(out).To(ContainSubstring("=================STATE OF ARCHITECTURAL FILE================\n"))
			Expect(out).To(ContainSubstring("|REG[0] | value=0 | Status=VALID |\n"))
			Expect(out).To(ContainSubstring("|REG[1] | value=5 | Status=VALID |\n"))
			Expect(out).To(ContainSubstring("===============STATE OF DATA MEMORY==================\n"))
			Expect(out).To(ContainSubstring("|MEM[0} | Data Value=0 \n\n"))
			Expect(out).To(ContainSubstring("|MEM[99} | Data Value=0 \n\n"))
			Expect(out).NotTo(ContainSubstring("|MEM[100}"))
		})

		It("should report INVALID for a pending register", func() {
			regFile.MarkPending(7)
			tracer := pipeline.NewTracer(buf, false)
			tracer.DumpState(regFile, memory)

			Expect(buf.String()).To(ContainSubstring("|REG[7] | value=0 | Status=INVALID |\n"))
		})
	})
})
