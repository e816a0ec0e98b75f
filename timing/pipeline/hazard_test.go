package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexlab/apexsim/emu"
	"github.com/apexlab/apexsim/insts"
	"github.com/apexlab/apexsim/timing/latency"
	"github.com/apexlab/apexsim/timing/pipeline"
)

var _ = Describe("HazardUnit", func() {
	var (
		regFile *emu.RegFile
		hazard  *pipeline.HazardUnit
	)

	BeforeEach(func() {
		regFile = emu.NewRegFile()
		hazard = pipeline.NewHazardUnit(regFile, latency.NewTable())
	})

	Describe("SourcesReady", func() {
		It("should be ready when all sources are valid", func() {
			in := insts.Instruction{Op: insts.OpADD, Rd: 3, Rs1: 1, Rs2: 2}
			Expect(hazard.SourcesReady(in)).To(BeTrue())
		})

		It("should wait on a pending rs1", func() {
			regFile.MarkPending(1)
			in := insts.Instruction{Op: insts.OpADD, Rd: 3, Rs1: 1, Rs2: 2}
			Expect(hazard.SourcesReady(in)).To(BeFalse())
		})

		It("should wait on a pending rs2", func() {
			regFile.MarkPending(2)
			in := insts.Instruction{Op: insts.OpSTORE, Rs1: 1, Rs2: 2}
			Expect(hazard.SourcesReady(in)).To(BeFalse())
		})

		It("should ignore registers the opcode does not read", func() {
			regFile.MarkPending(1)
			regFile.MarkPending(2)

			Expect(hazard.SourcesReady(insts.Instruction{Op: insts.OpMOVC, Rd: 1})).To(BeTrue())
			Expect(hazard.SourcesReady(insts.Instruction{Op: insts.OpBZ, Imm: 8})).To(BeTrue())

			// LOAD reads only rs1.
			regFile.MarkReady(1)
			Expect(hazard.SourcesReady(insts.Instruction{Op: insts.OpLOAD, Rd: 4, Rs1: 1, Imm: 2})).To(BeTrue())
		})
	})

	Describe("ReadSources", func() {
		It("should copy the operand values into the latch", func() {
			regFile.Write(1, 10)
			regFile.Write(2, 20)

			l := &pipeline.Latch{
				Valid: true,
				Inst:  insts.Instruction{Op: insts.OpADD, Rd: 3, Rs1: 1, Rs2: 2},
			}
			hazard.ReadSources(l)

			Expect(l.Rs1Value).To(Equal(int32(10)))
			Expect(l.Rs2Value).To(Equal(int32(20)))
		})
	})

	Describe("ClaimDest / RollbackClaim", func() {
		It("should claim the destination exactly once", func() {
			l := &pipeline.Latch{
				Valid: true,
				Inst:  insts.Instruction{Op: insts.OpMOVC, Rd: 4, Imm: 9},
			}

			hazard.ClaimDest(l)
			Expect(regFile.IsReady(4)).To(BeFalse())
			Expect(l.ClaimedRd).To(BeTrue())

			// A second claim in a stalled cycle is a no-op.
			regFile.MarkReady(4)
			hazard.ClaimDest(l)
			Expect(regFile.IsReady(4)).To(BeTrue())
		})

		It("should not claim for non-writing opcodes", func() {
			l := &pipeline.Latch{
				Valid: true,
				Inst:  insts.Instruction{Op: insts.OpSTORE, Rs1: 1, Rs2: 2},
			}
			hazard.ClaimDest(l)

			Expect(l.ClaimedRd).To(BeFalse())
		})

		It("should roll back a claimed destination on flush", func() {
			l := &pipeline.Latch{
				Valid: true,
				Inst:  insts.Instruction{Op: insts.OpMOVC, Rd: 4, Imm: 9},
			}
			hazard.ClaimDest(l)
			Expect(regFile.IsReady(4)).To(BeFalse())

			hazard.RollbackClaim(l)
			Expect(regFile.IsReady(4)).To(BeTrue())
			Expect(l.ClaimedRd).To(BeFalse())
		})

		It("should not roll back a latch that never claimed", func() {
			regFile.MarkPending(4) // An older producer owns R4.

			l := &pipeline.Latch{
				Valid: true,
				Inst:  insts.Instruction{Op: insts.OpMOVC, Rd: 4, Imm: 9},
			}
			hazard.RollbackClaim(l)

			Expect(regFile.IsReady(4)).To(BeFalse())
		})
	})

	Describe("ZeroFlagWait", func() {
		It("should wait one bubble behind ADD or SUB in execute", func() {
			ex := &pipeline.Latch{Valid: true, Inst: insts.Instruction{Op: insts.OpADD, Rd: 3}}
			Expect(hazard.ZeroFlagWait(ex)).To(Equal(uint64(1)))

			ex.Inst.Op = insts.OpSUB
			Expect(hazard.ZeroFlagWait(ex)).To(Equal(uint64(1)))
		})

		It("should wait two bubbles behind MUL in execute", func() {
			ex := &pipeline.Latch{Valid: true, Inst: insts.Instruction{Op: insts.OpMUL, Rd: 3}}
			Expect(hazard.ZeroFlagWait(ex)).To(Equal(uint64(2)))
		})

		It("should not wait behind a bubble or a non-producer", func() {
			Expect(hazard.ZeroFlagWait(&pipeline.Latch{})).To(Equal(uint64(0)))

			ex := &pipeline.Latch{Valid: true, Inst: insts.Instruction{Op: insts.OpLOAD, Rd: 3}}
			Expect(hazard.ZeroFlagWait(ex)).To(Equal(uint64(0)))
		})
	})
})
